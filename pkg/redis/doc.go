// Package redis connects the go-redis client used by the distributed rate
// limit store: a retrying Connect bounded by a timeout, env-driven Config,
// and a health probe.
//
//	var cfg redis.Config
//	if err := env.Parse(&cfg); err != nil {
//	    panic(err)
//	}
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer client.Close()
//
//	store := ratelimit.NewRedisStore(client)
package redis
