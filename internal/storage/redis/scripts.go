package redis

const (
	// addSessionScript atomically stores a session and appends it to its day index
	addSessionScript = `
local session_key = KEYS[1]     -- equtil:session:{sessionID}
local day_list = KEYS[2]        -- equtil:sessions:day:{day}
local days_set = KEYS[3]        -- equtil:sessions:days

local session_id = ARGV[1]
local day = ARGV[7]

if redis.call('EXISTS', session_key) == 1 then
  return redis.error_reply('session exists: ' .. session_id)
end

redis.call('HSET', session_key,
  'id', session_id,
  'equipment', ARGV[2],
  'category', ARGV[3],
  'start', ARGV[4],
  'end', ARGV[5],
  'recorded_at', ARGV[6],
  'day', day
)

redis.call('RPUSH', day_list, session_id)
redis.call('SADD', days_set, day)

return redis.call('LLEN', day_list)
`

	// deleteDayScript removes every session of a day and its indexes
	deleteDayScript = `
local day_list = KEYS[1]        -- equtil:sessions:day:{day}
local days_set = KEYS[2]        -- equtil:sessions:days
local prefix = ARGV[1]          -- equtil:session:
local day = ARGV[2]

local ids = redis.call('LRANGE', day_list, 0, -1)
local deleted = 0
for _, id in ipairs(ids) do
  deleted = deleted + redis.call('DEL', prefix .. id)
end

redis.call('DEL', day_list)
redis.call('SREM', days_set, day)

return deleted
`
)
