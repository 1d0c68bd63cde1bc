// Package redis provides Redis client initialization and health checking for
// the session store.
//
// Connect validates the connection URL, dials with exponential backoff retry
// logic, and verifies connectivity with a ping before returning the client.
// Both redis:// and rediss:// (TLS) URL schemes are supported.
//
// Configuration comes from the environment:
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//	}
//
// Usage:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Healthcheck returns a probe function for readiness endpoints:
//
//	check := redis.Healthcheck(client)
//	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
//		if err := check(r.Context()); err != nil {
//			http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
//			return
//		}
//		w.WriteHeader(http.StatusOK)
//	})
//
// Failures surface as the package's sentinel errors
// (ErrFailedToParseRedisConnString, ErrRedisNotReady, ErrEmptyConnectionURL,
// ErrHealthcheckFailed) wrapping the underlying client error, checkable with
// errors.Is.
package redis
