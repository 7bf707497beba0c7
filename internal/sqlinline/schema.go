package sqlinline

// Schema creates the tables the inline queries expect.
const Schema = `--sql 38c4eae0-4803-49cb-8590-7cfdcb87aa57
create table if not exists angle_sessions (
    id uuid primary key,
    user_id text not null,
    status text not null default 'QUEUED',
    request_json jsonb not null,
    error_message text not null default '',
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
create index if not exists angle_sessions_queued_idx on angle_sessions (created_at) where status = 'QUEUED';

create table if not exists angle_results (
    session_id uuid not null references angle_sessions (id) on delete cascade,
    position int not null,
    angle text not null,
    status text not null,
    image_url text,
    error_message text,
    retry_count int not null default 0,
    updated_at timestamptz not null default now(),
    primary key (session_id, position)
);

create table if not exists brand_settings (
    id uuid primary key,
    user_id text not null,
    name text,
    voice text,
    logo_key text,
    logo_position text,
    avoid text[],
    resource_keys text[],
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);

create table if not exists integration_tokens (
    id uuid primary key,
    provider text not null unique,
    token text not null,
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`
