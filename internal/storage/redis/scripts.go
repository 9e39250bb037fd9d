package redis

const (
	// appendRecordScript allocates the next ID for a record kind and stores
	// the encoded record under it.
	appendRecordScript = `
local seq_key = KEYS[1]     -- screentime:seq:{kind}
local records_key = KEYS[2] -- screentime:{kind}

local payload = ARGV[1]

local id = redis.call('INCR', seq_key)
redis.call('HSET', records_key, tostring(id), payload)

return id
`

	// initAccountScript writes the account singletons that do not exist yet
	// and reports how many were created.
	initAccountScript = `
local created = 0
for i, key in ipairs(KEYS) do
  if redis.call('SETNX', key, ARGV[i]) == 1 then
    created = created + 1
  end
end
return created
`
)
