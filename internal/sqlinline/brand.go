package sqlinline

const QSelectBrandSettings = `--sql e790082e-99b1-49ab-9d34-884a0e63f20c
select id::text,
       user_id,
       coalesce(name, ''),
       coalesce(voice, ''),
       coalesce(logo_key, ''),
       coalesce(logo_position, ''),
       coalesce(avoid, '{}'::text[]),
       coalesce(resource_keys, '{}'::text[])
from brand_settings
where id = $1::uuid
limit 1;
`
