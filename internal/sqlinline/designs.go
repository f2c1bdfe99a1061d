package sqlinline

const QInsertDesign = `--sql 825eb8d2-9cc1-4dba-95f1-e7400638fa32
insert into designs(
  id,
  user_prompt,
  optimized_prompt,
  style,
  environment,
  status,
  properties
)
values (
  $1::uuid,
  $2::text,
  $3::text,
  $4::text,
  $5::text,
  'GENERATING',
  '{}'::jsonb
)
returning id;
`

const QSetDesignMeshTask = `--sql 453011bd-eb7a-46d9-b8c7-63232d7adddb
update designs
set mesh_task_id = $2::text,
    status = 'CONVERTING',
    updated_at = now()
where id = $1::uuid;
`

const QSetDesignStatus = `--sql 898fc7fc-2219-43bd-a9c9-ab1e268f49dc
update designs
set status = $2::text,
    properties = properties || $3::jsonb,
    updated_at = now()
where id = $1::uuid;
`

const QInsertOrderMirror = `--sql 33eea135-9e6b-45e7-9d88-c09b1783417b
insert into order_mirror(
  id,
  directus_id,
  email,
  status,
  details_json
)
values (
  gen_random_uuid(),
  $1::text,
  $2::text,
  $3::text,
  $4::jsonb
)
returning id;
`
