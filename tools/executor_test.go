package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesabot/mesa"
	"github.com/mesabot/mesa/mock"
	"github.com/mesabot/mesa/tools"
)

type resultEnvelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Record  *mesa.Reservation `json:"record"`
}

func decodeResult(t *testing.T, res *mesa.ToolResult) resultEnvelope {
	t.Helper()
	var env resultEnvelope
	require.NoError(t, json.Unmarshal(res.Payload, &env))
	return env
}

func TestCombineDateTime(t *testing.T) {
	mx, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	t.Run("converts local wall clock to UTC", func(t *testing.T) {
		got, err := tools.CombineDateTime("2025-03-10", "20:00", mx)
		require.NoError(t, err)
		// Mexico City no longer observes DST, so March is UTC-6.
		assert.Equal(t, time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC), got)
	})

	t.Run("time defaults to midnight", func(t *testing.T) {
		got, err := tools.CombineDateTime("2025-03-10", "", time.UTC)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("empty date is rejected", func(t *testing.T) {
		_, err := tools.CombineDateTime("", "20:00", time.UTC)
		require.ErrorIs(t, err, mesa.ErrValidation)
	})

	t.Run("garbage date is rejected", func(t *testing.T) {
		_, err := tools.CombineDateTime("next friday", "20:00", time.UTC)
		require.ErrorIs(t, err, mesa.ErrValidation)
	})
}

func TestExecutorCreate(t *testing.T) {
	t.Run("creates a reservation through the store", func(t *testing.T) {
		var gotReq mesa.ReservationRequest
		store := &mock.ReservationStore{
			CreateFn: func(ctx context.Context, req mesa.ReservationRequest) (*mesa.Reservation, error) {
				gotReq = req
				return &mesa.Reservation{
					ID:        "recA1B2C3",
					Name:      req.Name,
					StartsAt:  req.StartsAt,
					PartySize: req.PartySize,
					Status:    mesa.StatusReceived,
				}, nil
			},
		}
		e := tools.NewExecutor(store, time.UTC, zerolog.Nop())

		res, err := e.Execute(context.Background(), tools.CreateReservationTool, json.RawMessage(`{
			"name": "Juan Pérez",
			"phone": "+525512345678",
			"email": "juan@example.com",
			"date": "2025-03-10",
			"time": "20:00",
			"party_size": 4
		}`))
		require.NoError(t, err)
		require.False(t, res.IsError)

		env := decodeResult(t, res)
		assert.True(t, env.Success)
		require.NotNil(t, env.Record)
		assert.Equal(t, "recA1B2C3", env.Record.ID)
		assert.Equal(t, "Juan Pérez", gotReq.Name)
		assert.Equal(t, time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC), gotReq.StartsAt)
	})

	t.Run("missing date fails validation without reaching the store", func(t *testing.T) {
		store := &mock.ReservationStore{
			CreateFn: func(ctx context.Context, req mesa.ReservationRequest) (*mesa.Reservation, error) {
				t.Fatal("store should not be called")
				return nil, nil
			},
		}
		e := tools.NewExecutor(store, time.UTC, zerolog.Nop())

		res, err := e.Execute(context.Background(), tools.CreateReservationTool,
			json.RawMessage(`{"name": "Juan", "time": "20:00"}`))
		require.NoError(t, err)
		assert.True(t, res.IsError)

		env := decodeResult(t, res)
		assert.False(t, env.Success)
		assert.Contains(t, env.Error, "date is required")
	})

	t.Run("store failure becomes a failure payload", func(t *testing.T) {
		store := &mock.ReservationStore{
			CreateFn: func(ctx context.Context, req mesa.ReservationRequest) (*mesa.Reservation, error) {
				return nil, errors.New("airtable: 503")
			},
		}
		e := tools.NewExecutor(store, time.UTC, zerolog.Nop())

		res, err := e.Execute(context.Background(), tools.CreateReservationTool,
			json.RawMessage(`{"name": "Juan", "date": "2025-03-10", "time": "20:00"}`))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, decodeResult(t, res).Error, "airtable: 503")
	})
}

func TestExecutorUpdate(t *testing.T) {
	t.Run("passes only the supplied fields", func(t *testing.T) {
		var gotID string
		var gotPatch mesa.ReservationPatch
		store := &mock.ReservationStore{
			UpdateFn: func(ctx context.Context, id string, patch mesa.ReservationPatch) (*mesa.Reservation, error) {
				gotID, gotPatch = id, patch
				return &mesa.Reservation{ID: id}, nil
			},
		}
		e := tools.NewExecutor(store, time.UTC, zerolog.Nop())

		res, err := e.Execute(context.Background(), tools.UpdateReservationTool,
			json.RawMessage(`{"reservation_id": "recA1B2C3", "party_size": 6}`))
		require.NoError(t, err)
		require.False(t, res.IsError)

		assert.Equal(t, "recA1B2C3", gotID)
		require.NotNil(t, gotPatch.PartySize)
		assert.Equal(t, 6, *gotPatch.PartySize)
		assert.Nil(t, gotPatch.Name)
		assert.Nil(t, gotPatch.StartsAt)
	})

	t.Run("date and time recombine into a new instant", func(t *testing.T) {
		var gotPatch mesa.ReservationPatch
		store := &mock.ReservationStore{
			UpdateFn: func(ctx context.Context, id string, patch mesa.ReservationPatch) (*mesa.Reservation, error) {
				gotPatch = patch
				return &mesa.Reservation{ID: id}, nil
			},
		}
		e := tools.NewExecutor(store, time.UTC, zerolog.Nop())

		res, err := e.Execute(context.Background(), tools.UpdateReservationTool,
			json.RawMessage(`{"reservation_id": "recA1B2C3", "date": "2025-03-11", "time": "19:30"}`))
		require.NoError(t, err)
		require.False(t, res.IsError)

		require.NotNil(t, gotPatch.StartsAt)
		assert.Equal(t, time.Date(2025, 3, 11, 19, 30, 0, 0, time.UTC), *gotPatch.StartsAt)
	})

	t.Run("date without time is rejected without reaching the store", func(t *testing.T) {
		store := &mock.ReservationStore{
			UpdateFn: func(ctx context.Context, id string, patch mesa.ReservationPatch) (*mesa.Reservation, error) {
				t.Fatal("store should not be called")
				return nil, nil
			},
		}
		e := tools.NewExecutor(store, time.UTC, zerolog.Nop())

		res, err := e.Execute(context.Background(), tools.UpdateReservationTool,
			json.RawMessage(`{"reservation_id": "recA1B2C3", "date": "2025-03-12"}`))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, decodeResult(t, res).Error, "date requires time")
	})

	t.Run("time without date is rejected", func(t *testing.T) {
		e := tools.NewExecutor(&mock.ReservationStore{}, time.UTC, zerolog.Nop())

		res, err := e.Execute(context.Background(), tools.UpdateReservationTool,
			json.RawMessage(`{"reservation_id": "recA1B2C3", "time": "21:00"}`))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, decodeResult(t, res).Error, "time requires date")
	})

	t.Run("no fields to update is rejected", func(t *testing.T) {
		e := tools.NewExecutor(&mock.ReservationStore{}, time.UTC, zerolog.Nop())

		res, err := e.Execute(context.Background(), tools.UpdateReservationTool,
			json.RawMessage(`{"reservation_id": "recA1B2C3"}`))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, decodeResult(t, res).Error, "no fields to update")
	})

	t.Run("missing reservation id is rejected", func(t *testing.T) {
		e := tools.NewExecutor(&mock.ReservationStore{}, time.UTC, zerolog.Nop())

		res, err := e.Execute(context.Background(), tools.UpdateReservationTool,
			json.RawMessage(`{"party_size": 2}`))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, decodeResult(t, res).Error, "reservation_id is required")
	})
}

func TestExecutorCancel(t *testing.T) {
	t.Run("cancels with the guest's reason", func(t *testing.T) {
		var gotID, gotNotes string
		store := &mock.ReservationStore{
			CancelFn: func(ctx context.Context, id, notes string) (*mesa.Reservation, error) {
				gotID, gotNotes = id, notes
				return &mesa.Reservation{ID: id, Status: mesa.StatusCancelled}, nil
			},
		}
		e := tools.NewExecutor(store, time.UTC, zerolog.Nop())

		res, err := e.Execute(context.Background(), tools.CancelReservationTool,
			json.RawMessage(`{"reservation_id": "recA1B2C3", "notes": "plans changed"}`))
		require.NoError(t, err)
		require.False(t, res.IsError)

		assert.Equal(t, "recA1B2C3", gotID)
		assert.Equal(t, "plans changed", gotNotes)
		assert.Equal(t, mesa.StatusCancelled, decodeResult(t, res).Record.Status)
	})

	t.Run("unknown reservation becomes a failure payload", func(t *testing.T) {
		store := &mock.ReservationStore{
			CancelFn: func(ctx context.Context, id, notes string) (*mesa.Reservation, error) {
				return nil, mesa.ErrReservationNotFound
			},
		}
		e := tools.NewExecutor(store, time.UTC, zerolog.Nop())

		res, err := e.Execute(context.Background(), tools.CancelReservationTool,
			json.RawMessage(`{"reservation_id": "recMISSING"}`))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}

func TestExecutorUnknownTool(t *testing.T) {
	e := tools.NewExecutor(&mock.ReservationStore{}, time.UTC, zerolog.Nop())

	res, err := e.Execute(context.Background(), "teleport_guest", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, decodeResult(t, res).Error, "teleport_guest")
}

func TestDefinitions(t *testing.T) {
	defs := tools.Definitions()
	require.Len(t, defs, 3)

	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
		assert.True(t, json.Valid(d.Parameters), "parameters for %s must be valid JSON", d.Name)
	}
	assert.Equal(t, []string{
		tools.CreateReservationTool,
		tools.UpdateReservationTool,
		tools.CancelReservationTool,
	}, names)
}
