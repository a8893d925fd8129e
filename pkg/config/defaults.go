package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "evshare"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBookingLockTTL      = 10 * time.Second
	DefaultAnalyticsWindowDays = 30
	DefaultVoteQuorum          = 3

	DefaultPaginationLimit = 100

	DefaultKafkaBrokers            = "localhost:9092"
	DefaultBookingEventsTopic      = "booking-events"
	DefaultPaymentEventsTopic      = "payment-events"
	DefaultDLQTopic                = "evshare-dlq"
	DefaultProducerMaxAttempts     = 3
	DefaultProducerBatchTimeout    = 10 * time.Millisecond
	DefaultProducerRequireAcks     = -1 // all replicas
	DefaultProducerCompression     = "snappy"
	DefaultConsumerStartOffset     = -1 // newest
	DefaultConsumerMinBytes        = 1
	DefaultConsumerMaxBytes        = 10 * 1024 * 1024
	DefaultConsumerMaxWait         = 500 * time.Millisecond
	DefaultConsumerMaxRetries      = 3
)
