package sqlinline

const QInsertAngleSession = `--sql 35b30d0d-da49-42da-8620-2e2638ebea9b
insert into angle_sessions (id, user_id, status, request_json, error_message, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::jsonb, '', now(), now())
returning created_at, updated_at;
`

const QSelectAngleSession = `--sql c41ca2a0-44d2-44ac-9ce2-503d0ddf411b
select id::text, user_id, status, request_json, coalesce(error_message, ''), created_at, updated_at
from angle_sessions
where id = $1::uuid
  and user_id = $2::text
limit 1;
`

const QUpdateAngleSessionStatus = `--sql 017bd8eb-eb20-4cf6-8cd6-592adc3ee1e2
update angle_sessions
set status = $2::text,
    error_message = $3::text,
    updated_at = now()
where id = $1::uuid;
`

// QUpsertAngleResults writes every task of a session in one statement. The
// arrays are positionally aligned.
const QUpsertAngleResults = `--sql fbb0803a-dd10-4540-a9d8-258d1549bc6d
insert into angle_results (session_id, position, angle, status, image_url, error_message, retry_count, updated_at)
select $1::uuid, r.position, r.angle, r.status, r.image_url, r.error_message, r.retry_count, now()
from unnest($2::int[], $3::text[], $4::text[], $5::text[], $6::text[], $7::int[])
    as r(position, angle, status, image_url, error_message, retry_count)
on conflict (session_id, position) do update set
    angle = excluded.angle,
    status = excluded.status,
    image_url = excluded.image_url,
    error_message = excluded.error_message,
    retry_count = excluded.retry_count,
    updated_at = now();
`

const QSelectAngleResults = `--sql 8cb3e18f-1152-4a66-96ae-59a0ca6e4307
select angle, status, coalesce(image_url, ''), coalesce(error_message, ''), retry_count
from angle_results
where session_id = $1::uuid
order by position asc;
`

const QWorkerClaimAngleSession = `--sql 3309da46-2fcc-43ca-ac0b-c9cb42cf7988
with next_session as (
    select id
    from angle_sessions
    where status = 'QUEUED'
    order by created_at asc
    for update skip locked
    limit 1
),
updated as (
    update angle_sessions
    set status = 'RUNNING', updated_at = now()
    where id in (select id from next_session)
    returning id::text, user_id, request_json
)
select * from updated;
`
