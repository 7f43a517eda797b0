package redis

const (
	// addMinutesScript atomically increments (or creates) a daily usage
	// record and maintains the day index.
	addMinutesScript = `
local usage_key = KEYS[1]     -- focusd:usage:daily:{date}
local index_key = KEYS[2]     -- focusd:usage:days

local date = ARGV[1]
local total = tonumber(ARGV[2])
local restricted = tonumber(ARGV[3])

local exists = redis.call('EXISTS', usage_key)

if exists == 0 then
  redis.call('HSET', usage_key,
    'date', date,
    'total_minutes', total,
    'restricted_minutes', restricted
  )
else
  redis.call('HINCRBY', usage_key, 'total_minutes', total)
  redis.call('HINCRBY', usage_key, 'restricted_minutes', restricted)
end

-- Counters never go negative and restricted never exceeds total.
local t = tonumber(redis.call('HGET', usage_key, 'total_minutes'))
local r = tonumber(redis.call('HGET', usage_key, 'restricted_minutes'))
if t < 0 then
  t = 0
  redis.call('HSET', usage_key, 'total_minutes', 0)
end
if r < 0 then
  r = 0
  redis.call('HSET', usage_key, 'restricted_minutes', 0)
end
if r > t then
  redis.call('HSET', usage_key, 'restricted_minutes', t)
end

redis.call('SADD', index_key, date)

return 'OK'
`
)
