package orchestrator

import "productshots/internal/domain"

// OrderAngles regroups angles into domain.PreferredOrder. Angles outside that
// list keep their relative order at the end; duplicates are dropped.
func OrderAngles(angles []domain.Angle) []domain.Angle {
	requested := make(map[domain.Angle]bool, len(angles))
	for _, a := range angles {
		requested[a] = true
	}

	out := make([]domain.Angle, 0, len(requested))
	placed := make(map[domain.Angle]bool, len(requested))
	for _, a := range domain.PreferredOrder {
		if requested[a] {
			out = append(out, a)
			placed[a] = true
		}
	}
	for _, a := range angles {
		if !placed[a] {
			out = append(out, a)
			placed[a] = true
		}
	}
	return out
}
