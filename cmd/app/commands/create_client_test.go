package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	authDomain "github.com/checktick/surveyvault/internal/auth/domain"
)

// stubClientUseCase implements authUseCase.ClientUseCase with function fields.
type stubClientUseCase struct {
	createFn func(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error)
}

func (s *stubClientUseCase) Create(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error) {
	return s.createFn(ctx, input)
}

func (s *stubClientUseCase) Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error) {
	return nil, authDomain.ErrClientNotFound
}

func (s *stubClientUseCase) Deactivate(ctx context.Context, clientID uuid.UUID) error {
	return nil
}

func (s *stubClientUseCase) Authenticate(ctx context.Context, clientID uuid.UUID, plainSecret string) (*authDomain.Client, error) {
	return nil, authDomain.ErrInvalidCredentials
}

func TestRunCreateClient(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clientID := uuid.Must(uuid.NewV7())
	plainSecret := "test-secret"

	t.Run("text output", func(t *testing.T) {
		useCase := &stubClientUseCase{
			createFn: func(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error) {
				require.Equal(t, "test-client", input.Name)
				require.True(t, input.IsActive)
				return &authDomain.CreateClientOutput{ID: clientID, PlainSecret: plainSecret}, nil
			},
		}

		var out bytes.Buffer
		err := RunCreateClient(ctx, useCase, logger, "test-client", true, "text", IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Contains(t, out.String(), clientID.String())
		require.Contains(t, out.String(), plainSecret)
	})

	t.Run("json output", func(t *testing.T) {
		useCase := &stubClientUseCase{
			createFn: func(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error) {
				return &authDomain.CreateClientOutput{ID: clientID, PlainSecret: plainSecret}, nil
			},
		}

		var out bytes.Buffer
		err := RunCreateClient(ctx, useCase, logger, "test-client", false, "json", IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Contains(t, out.String(), clientID.String())
		require.Contains(t, out.String(), plainSecret)
		require.Contains(t, out.String(), "{")
	})

	t.Run("use case error", func(t *testing.T) {
		useCase := &stubClientUseCase{
			createFn: func(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error) {
				return nil, context.DeadlineExceeded
			},
		}

		err := RunCreateClient(ctx, useCase, logger, "test-client", true, "text", IOTuple{Writer: &bytes.Buffer{}})

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create client")
	})
}
