package storage

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/dnscache"
	"golang.org/x/sync/semaphore"
)

const defaultAwsRegion = "us-east-1"

// AwsConnection holds the credentials and client settings used for S3
type AwsConnection struct {
	Region                *string `hcl:"region"`
	Profile               *string `hcl:"profile"`
	AccessKey             *string `hcl:"access_key"`
	SecretKey             *string `hcl:"secret_key"`
	SessionToken          *string `hcl:"session_token"`
	MaxErrorRetryAttempts *int    `hcl:"max_error_retry_attempts"`
	MinErrorRetryDelay    *int    `hcl:"min_error_retry_delay"`
	EndpointUrl           *string `hcl:"endpoint_url"`
	S3ForcePathStyle      *bool   `hcl:"s3_force_path_style"`
}

func (c *AwsConnection) Validate() error {
	if c.AccessKey != nil && c.SecretKey == nil {
		return fmt.Errorf("access_key set without secret_key")
	}
	if c.AccessKey == nil && c.SecretKey != nil {
		return fmt.Errorf("secret_key set without access_key")
	}
	if c.MinErrorRetryDelay != nil && *c.MinErrorRetryDelay < 1 {
		return fmt.Errorf("min_error_retry_delay must be greater than or equal to 1")
	}
	if c.MaxErrorRetryAttempts != nil && *c.MaxErrorRetryAttempts < 1 {
		return fmt.Errorf("max_error_retry_attempts must be greater than or equal to 1")
	}
	return nil
}

func (c *AwsConnection) GetClientConfiguration(ctx context.Context) (*aws.Config, error) {
	var configOptions []func(*config.LoadOptions) error

	if c.Profile != nil {
		configOptions = append(configOptions, config.WithSharedConfigProfile(aws.ToString(c.Profile)))
	}

	if c.AccessKey != nil && c.SecretKey != nil {
		provider := credentials.NewStaticCredentialsProvider(aws.ToString(c.AccessKey), aws.ToString(c.SecretKey), aws.ToString(c.SessionToken))
		configOptions = append(configOptions, config.WithCredentialsProvider(provider))
	}

	if c.Region != nil {
		configOptions = append(configOptions, config.WithRegion(*c.Region))
	}

	configOptions = append(configOptions, config.WithHTTPClient(sharedHTTPClient()))

	cfg, err := config.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	if cfg.Region == "" {
		slog.Warn("no AWS region configured, using default", "region", defaultAwsRegion)
		cfg.Region = defaultAwsRegion
	}

	maxAttempts := getConfigOrEnvInt(c.MaxErrorRetryAttempts, "AWS_MAX_ATTEMPTS", retry.DefaultMaxAttempts)
	minRetryDelay := 25 * time.Millisecond
	if c.MinErrorRetryDelay != nil {
		minRetryDelay = time.Duration(*c.MinErrorRetryDelay) * time.Millisecond
	}
	retryer := retry.NewStandard(func(o *retry.StandardOptions) {
		o.MaxAttempts = maxAttempts
		o.MaxBackoff = 30 * time.Second
		o.Backoff = NewExponentialJitterBackoff(minRetryDelay, 30*time.Second)
	})
	cfg.Retryer = func() aws.Retryer {
		return retryer
	}

	return &cfg, nil
}

// endpoint returns the custom endpoint, from config or the environment
func (c *AwsConnection) endpoint() string {
	return getConfigOrEnv(c.EndpointUrl, "AWS_ENDPOINT_URL")
}

func getConfigOrEnv(configValue *string, env string) string {
	if configValue != nil {
		return *configValue
	}
	return os.Getenv(env)
}

func getConfigOrEnvInt(configValue *int, env string, defaultValue int) int {
	if configValue != nil {
		return *configValue
	}
	return readEnvVarToInt(env, defaultValue)
}

func readEnvVarToInt(name string, defaultVal int) int {
	envValue := os.Getenv(name)
	if envValue == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(envValue)
	if err != nil {
		slog.Warn("ignoring invalid integer environment variable", "name", name, "value", envValue)
		return defaultVal
	}
	return i
}

// sharedHTTPClient is the single HTTP client used by every S3 client of the process.
// It caches DNS lookups and bounds the number of lookups in flight.
var sharedHTTPClient = sync.OnceValue(initializeHTTPClient)

func initializeHTTPClient() aws.HTTPClient {
	// max parallel DNS lookups
	dnsLookupMaxParallel := readEnvVarToInt("DATA_LANDER_AWS_DNS_LOOKUP_MAX_PARALLEL", 25)
	// 0 disables refresh, -1 disables the cache
	dnsCacheRefreshIntervalSecs := readEnvVarToInt("DATA_LANDER_AWS_DNS_CACHE_REFRESH_INTERVAL_SECS", 300)
	// 0 removes the limit
	httpTransportMaxConnsPerHost := readEnvVarToInt("DATA_LANDER_AWS_HTTP_TRANSPORT_MAX_CONNS_PER_HOST", 64)

	resolver := &dnscache.Resolver{}
	if dnsCacheRefreshIntervalSecs > 0 {
		go func() {
			t := time.NewTicker(time.Duration(dnsCacheRefreshIntervalSecs) * time.Second)
			defer t.Stop()
			for range t.C {
				resolver.Refresh(true)
			}
		}()
	}

	client := awshttp.NewBuildableClient()

	if httpTransportMaxConnsPerHost > 0 {
		client = client.WithTransportOptions(func(tr *http.Transport) {
			tr.MaxConnsPerHost = httpTransportMaxConnsPerHost
		})
	}

	if dnsCacheRefreshIntervalSecs >= 0 {
		sem := semaphore.NewWeighted(int64(dnsLookupMaxParallel))
		dialer := client.GetDialer()

		client = client.WithTransportOptions(func(tr *http.Transport) {
			tr.DialContext = func(ctx context.Context, network string, addr string) (conn net.Conn, err error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}

				if err := sem.Acquire(ctx, 1); err != nil {
					return nil, err
				}
				ips, err := resolver.LookupHost(ctx, host)
				sem.Release(1)
				if err != nil {
					return nil, err
				}

				// try each address in turn until one connects
				for _, ip := range ips {
					conn, err = dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
					if err == nil {
						break
					}
				}
				return conn, err
			}
		})
	}

	return client
}

// ExponentialJitterBackoff provides backoff delays with jitter based on the number of attempts
type ExponentialJitterBackoff struct {
	minDelay time.Duration
	maxDelay time.Duration
}

func NewExponentialJitterBackoff(minDelay, maxDelay time.Duration) *ExponentialJitterBackoff {
	return &ExponentialJitterBackoff{minDelay: minDelay, maxDelay: maxDelay}
}

// BackoffDelay returns the duration to wait before the next attempt
func (j *ExponentialJitterBackoff) BackoffDelay(attempt int, err error) (time.Duration, error) {
	// jitter is in [0.8, 1.2)
	jitter := float64(rand.Intn(40)+80) / 100

	retryTime := time.Duration(float64(j.minDelay) * math.Pow(3, float64(attempt)) * jitter)
	if retryTime > j.maxDelay || retryTime <= 0 {
		retryTime = j.maxDelay
	}

	slog.Info("retrying storage request", "attempt", attempt, "retry_time", retryTime.String(), "error", err)
	return retryTime, nil
}
