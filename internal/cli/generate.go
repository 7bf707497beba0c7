package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"productshots/internal/domain"
	"productshots/internal/domain/jsoncfg"
	"productshots/internal/infra"
	"productshots/internal/pipeline"
	"productshots/internal/storage"
)

const localUser = "local"

type generateOptions struct {
	image   string
	logo    string
	outDir  string
	asJSON  bool
	verbose bool
	request jsoncfg.SessionRequest
}

// GenerateCmd runs one session against local files without a database.
func GenerateCmd() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate --image product.jpg",
		Short: "Generate angle shots for a local product photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, &opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.image, "image", "", "Product photo to use as the reference")
	f.StringVar(&opts.logo, "logo", "", "Logo image to overlay on each angle")
	f.StringVar(&opts.outDir, "out", "", "Output directory (defaults to STORAGE_PATH)")
	f.BoolVar(&opts.asJSON, "json", false, "Print the session as JSON")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline progress to stderr")
	f.StringSliceVar(&opts.request.Angles, "angles", nil, "Angles to render (wide, medium, closeup, topdown, detail)")
	f.StringVar(&opts.request.AspectRatio, "aspect", "", "Aspect ratio (1:1, 4:5, 9:16, 16:9, 3:4)")
	f.StringVar(&opts.request.BackgroundType, "background", "", "Background preset")
	f.StringVar(&opts.request.CustomBackground, "custom", "", "Custom scene description")
	f.StringVar(&opts.request.AdditionalNotes, "notes", "", "Additional notes")
	f.StringVar(&opts.request.UsagePurpose, "usage", "", "Usage purpose")
	f.StringVar(&opts.request.DisplayInfo, "display", "", "Display information")
	f.StringVar(&opts.request.VisualStyle, "style", "", "Visual style")
	f.StringVar(&opts.request.TargetAudience, "audience", "", "Target audience")
	f.StringVar(&opts.request.Logo.Position, "logo-position", "", "Logo anchor")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	ctx := cmd.Context()
	cfg, err := infra.LoadLocalConfig()
	if err != nil {
		return err
	}
	outDir := opts.outDir
	if outDir == "" {
		outDir = cfg.StoragePath
	}
	store, err := storage.NewFileStore(outDir, "")
	if err != nil {
		return err
	}

	req := opts.request
	if req.SourceKey, err = importFile(cmd, store, opts.image); err != nil {
		return err
	}
	if opts.logo != "" {
		if req.Logo.Key, err = importFile(cmd, store, opts.logo); err != nil {
			return err
		}
		req.Logo.Enabled = true
	}
	req.Normalize()
	sessionID := uuid.NewString()
	domainReq, err := req.ToDomain(sessionID, localUser)
	if err != nil {
		return err
	}

	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
	svc, err := pipeline.NewService(ctx, pipeline.Deps{
		Config:    cfg,
		Logger:    &logger,
		Store:     store,
		GeminiKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return err
	}

	session, runErr := svc.Generate(ctx, domainReq)
	if session == nil {
		return runErr
	}
	if err := printSession(cmd, store, session, opts.asJSON); err != nil {
		return err
	}
	return runErr
}

func importFile(cmd *cobra.Command, store *storage.FileStore, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	mime := storage.MIMEForKey(path)
	if mime == "" {
		return "", fmt.Errorf("%s: only png, jpeg and webp files are supported", path)
	}
	return store.Write(cmd.Context(), storage.UploadKey(localUser, uuid.NewString(), mime), data)
}

func printSession(cmd *cobra.Command, store *storage.FileStore, session *domain.GenerationSession, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(session)
	}
	fmt.Fprintf(out, "session %s: %s\n", session.ID, session.Status())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ANGLE\tSTATUS\tRETRIES\tOUTPUT")
	for _, task := range session.Tasks {
		output := task.ErrorMessage
		if task.Status == domain.TaskCompleted {
			if full, _, err := store.Resolve(task.ImageURL); err == nil {
				output = filepath.ToSlash(full)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", task.Angle, task.Status, task.RetryCount, output)
	}
	return tw.Flush()
}
