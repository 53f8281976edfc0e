package server

import (
	"context"
	"testing"
	"time"

	gplatform "github.com/campuscommons/campuscommons/internal/platform/grpc"
	"github.com/campuscommons/campuscommons/internal/services/spaces/moderation"
	"github.com/campuscommons/campuscommons/internal/space"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("CAMPUS_COMMONS_SPACES_DB_PATH", t.TempDir()+"/spaces.db")

	srv, err := NewWithAddr("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.Serve(runCtx)
	}()
	t.Cleanup(func() {
		runCancel()
		select {
		case serveErr := <-serveDone:
			if serveErr != nil {
				t.Fatalf("serve: %v", serveErr)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for server shutdown")
		}
	})
	return srv
}

func TestServerReportsHealthy(t *testing.T) {
	srv := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := gplatform.DialWithHealth(ctx, nil, srv.Addr(), 5*time.Second, t.Logf, gplatform.DefaultClientDialOptions()...)
	if err != nil {
		t.Fatalf("dial spaces server: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := conn.Close(); closeErr != nil {
			t.Fatalf("close gRPC connection: %v", closeErr)
		}
	})

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Fatalf("health status = %v, want SERVING", resp.GetStatus())
	}
}

func TestServerModerationRoundTrip(t *testing.T) {
	srv := startServer(t)

	record, _, err := srv.Moderation().CreateSpace(context.Background(), moderation.CreateSpaceInput{
		Name:        "Debate Society",
		Kind:        space.KindGroup,
		Privacy:     space.PrivacyPublic,
		OwnerUserID: "user-founder",
	})
	if err != nil {
		t.Fatalf("create space: %v", err)
	}

	if _, err := srv.Moderation().AddMember(context.Background(), moderation.AddMemberInput{
		SpaceID:     record.ID,
		ActorUserID: "user-founder",
		UserID:      "user-member",
	}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	visible, err := srv.Visibility().VisibleSpaces(context.Background(), "user-member")
	if err != nil {
		t.Fatalf("visible spaces: %v", err)
	}
	if len(visible) != 1 || visible[0].SpaceID != record.ID {
		t.Fatalf("visible = %+v, want one membership in %s", visible, record.ID)
	}
}
