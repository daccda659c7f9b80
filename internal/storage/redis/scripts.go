package redis

const (
	// recordQueryScript records one query for one user on one date. The day
	// count only moves when the word is new to the day's set; the all-time
	// score always moves by one. A word's first query also takes the next
	// sequence number in the first-seen set.
	recordQueryScript = `
local words_key = KEYS[1]     -- kdict:user:{uid}:daily:{date}:words
local day_key = KEYS[2]       -- kdict:user:{uid}:daily:{date}
local index_key = KEYS[3]     -- kdict:user:{uid}:daily:index
local alltime_key = KEYS[4]   -- kdict:user:{uid}:alltime
local firstseen_key = KEYS[5] -- kdict:user:{uid}:firstseen
local seq_key = KEYS[6]       -- kdict:user:{uid}:firstseen:seq

local date = ARGV[1]
local word = ARGV[2]

local added = redis.call('SADD', words_key, word)
local count
if added == 1 then
  count = redis.call('HINCRBY', day_key, 'count', 1)
  redis.call('HSET', day_key, 'date', date)
  redis.call('SADD', index_key, date)
else
  count = tonumber(redis.call('HGET', day_key, 'count') or '0')
end

if redis.call('ZSCORE', firstseen_key, word) == false then
  local seq = redis.call('INCR', seq_key)
  redis.call('ZADD', firstseen_key, seq, word)
end

local freq = redis.call('ZINCRBY', alltime_key, 1, word)

return {added, count, tonumber(freq)}
`

	// createUserScript claims an email address and writes the account hash.
	// Returns 0 without writing anything when the email is taken.
	createUserScript = `
local account_key = KEYS[1]   -- kdict:account:{uid}
local email_key = KEYS[2]     -- kdict:account:email:{email}

local id = ARGV[1]
local email = ARGV[2]
local password_hash = ARGV[3]
local created_at = ARGV[4]

if redis.call('EXISTS', email_key) == 1 then
  return 0
end
if redis.call('EXISTS', account_key) == 1 then
  return 0
end

redis.call('SET', email_key, id)
redis.call('HSET', account_key,
  'id', id,
  'email', email,
  'password_hash', password_hash,
  'created_at', created_at
)

return 1
`
)
