// cmd/client/main.go
// Fetches a variant from a running server into the local artifact path, or
// probes the server's gRPC health service.

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/dattu/lab_variants/pkg/server"
	"github.com/dattu/lab_variants/pkg/storage"
)

const (
	fetchAttempts = 3
	fetchTimeout  = 10 * time.Second
	retryDelay    = 2 * time.Second
)

func main() {
	mode := pflag.String("mode", "fetch", "fetch | health")
	serverURL := pflag.String("server", "http://localhost:8080", "variant server base URL")
	grpcAddr := pflag.String("grpc", "localhost:50051", "gRPC health address")
	studentID := pflag.String("id", "", "student id to fetch")
	out := pflag.String("out", storage.DefaultArtifact, "where to write the artifact")
	pflag.Parse()

	switch *mode {
	case "fetch":
		if strings.TrimSpace(*studentID) == "" {
			log.Fatal("flag -id is mandatory for fetch")
		}
		c := &fetcher{client: &http.Client{Timeout: fetchTimeout}, retryDelay: retryDelay}
		if err := c.fetch(*serverURL, strings.TrimSpace(*studentID), *out); err != nil {
			log.Fatalf("fetch: %v", err)
		}
		fmt.Printf("Fetched variant for %q → %q\n", *studentID, *out)
	case "health":
		resp, err := checkHealth(*grpcAddr)
		if err != nil {
			log.Fatalf("health: %v", err)
		}
		fmt.Println(protojson.Format(resp))
	default:
		log.Fatalf("unknown mode %q; must be fetch or health", *mode)
	}
}

type fetcher struct {
	client     *http.Client
	retryDelay time.Duration
}

// fetch downloads the bundle for id, validates it, and writes it to out.
// Transport failures and 5xx responses are retried; 4xx responses are not.
func (f *fetcher) fetch(base, id, out string) error {
	endpoint := strings.TrimRight(base, "/") + "/variants/" + url.PathEscape(id)

	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		body, retry, err := f.get(endpoint)
		if err == nil {
			if _, err := storage.Decode(body); err != nil {
				return err
			}
			return storage.AtomicWrite(out, body, 0o644)
		}
		lastErr = err
		if !retry {
			break
		}
		log.Printf("fetch %s failed (%d/%d): %v", endpoint, attempt, fetchAttempts, err)
		time.Sleep(f.retryDelay)
	}
	return lastErr
}

func (f *fetcher) get(endpoint string) (body []byte, retry bool, err error) {
	resp, err := f.client.Get(endpoint)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= 500,
			fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body, false, nil
}

func checkHealth(addr string) (*healthpb.HealthCheckResponse, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	return healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: server.ServiceName})
}
