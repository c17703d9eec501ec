// Package airtable implements mesa.ReservationStore against the Airtable
// records API.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mesabot/mesa"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Column names in the reservations table.
const (
	fieldName      = "Nombre"
	fieldPhone     = "Teléfono"
	fieldEmail     = "Email"
	fieldStartsAt  = "Fecha y Hora"
	fieldPartySize = "Nº Personas"
	fieldStatus    = "Estatus"
	fieldNotes     = "Notes"
)

// Interface compliance check.
var _ mesa.ReservationStore = (*Store)(nil)

// Store implements [mesa.ReservationStore] over the Airtable REST API.
// It is safe for concurrent use across sessions.
type Store struct {
	apiKey  string
	baseID  string
	tableID string
	baseURL string
	client  *http.Client
}

// Option configures a [Store].
type Option func(*Store)

// WithBaseURL overrides the API base URL. Tests point it at httptest servers.
func WithBaseURL(u string) Option {
	return func(s *Store) { s.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.client = c }
}

// New creates a Store for one base and table.
func New(apiKey, baseID, tableID string, opts ...Option) *Store {
	s := &Store{
		apiKey:  apiKey,
		baseID:  baseID,
		tableID: tableID,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// record is the Airtable wire representation of one row.
type record struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

// apiError is the Airtable error envelope.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Create persists a new reservation with status Recibida and returns the
// stored record, including the Airtable-assigned identifier.
func (s *Store) Create(ctx context.Context, req mesa.ReservationRequest) (*mesa.Reservation, error) {
	fields := map[string]any{
		fieldName:      req.Name,
		fieldPhone:     req.Phone,
		fieldEmail:     req.Email,
		fieldStartsAt:  req.StartsAt.UTC().Format(time.RFC3339),
		fieldPartySize: req.PartySize,
		fieldStatus:    string(mesa.StatusReceived),
	}
	if req.Notes != "" {
		fields[fieldNotes] = req.Notes
	}

	rec, err := s.do(ctx, http.MethodPost, s.recordsURL(""), record{Fields: fields})
	if err != nil {
		return nil, err
	}
	return rec.toReservation(), nil
}

// Update patches only the supplied fields of an existing reservation.
func (s *Store) Update(ctx context.Context, id string, patch mesa.ReservationPatch) (*mesa.Reservation, error) {
	if id == "" {
		return nil, fmt.Errorf("record id is required: %w", mesa.ErrValidation)
	}

	fields := map[string]any{}
	if patch.Name != nil {
		fields[fieldName] = *patch.Name
	}
	if patch.Phone != nil {
		fields[fieldPhone] = *patch.Phone
	}
	if patch.Email != nil {
		fields[fieldEmail] = *patch.Email
	}
	if patch.StartsAt != nil {
		fields[fieldStartsAt] = patch.StartsAt.UTC().Format(time.RFC3339)
	}
	if patch.PartySize != nil {
		fields[fieldPartySize] = *patch.PartySize
	}
	if patch.Notes != nil {
		fields[fieldNotes] = *patch.Notes
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", mesa.ErrValidation)
	}

	rec, err := s.do(ctx, http.MethodPatch, s.recordsURL(id), record{Fields: fields})
	if err != nil {
		return nil, err
	}
	return rec.toReservation(), nil
}

// Cancel marks a reservation Cancelada, optionally recording the guest's
// reason in the notes column.
func (s *Store) Cancel(ctx context.Context, id string, note string) (*mesa.Reservation, error) {
	if id == "" {
		return nil, fmt.Errorf("record id is required: %w", mesa.ErrValidation)
	}

	fields := map[string]any{fieldStatus: string(mesa.StatusCancelled)}
	if note != "" {
		fields[fieldNotes] = note
	}

	rec, err := s.do(ctx, http.MethodPatch, s.recordsURL(id), record{Fields: fields})
	if err != nil {
		return nil, err
	}
	return rec.toReservation(), nil
}

func (s *Store) recordsURL(recordID string) string {
	u := fmt.Sprintf("%s/%s/%s", s.baseURL, s.baseID, s.tableID)
	if recordID != "" {
		u += "/" + recordID
	}
	return u
}

func (s *Store) do(ctx context.Context, method, url string, body record) (*record, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("airtable: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("airtable: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("airtable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("airtable: read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("airtable: %w", mesa.ErrReservationNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("airtable: %s (%s)", apiErr.Error.Message, apiErr.Error.Type)
		}
		return nil, fmt.Errorf("airtable: unexpected status %d", resp.StatusCode)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("airtable: decode response: %w", err)
	}
	return &rec, nil
}

// toReservation maps an Airtable record onto the domain type. Missing or
// mistyped cells are left at zero values rather than failing the call.
func (r *record) toReservation() *mesa.Reservation {
	res := &mesa.Reservation{ID: r.ID}
	if v, ok := r.Fields[fieldName].(string); ok {
		res.Name = v
	}
	if v, ok := r.Fields[fieldPhone].(string); ok {
		res.Phone = v
	}
	if v, ok := r.Fields[fieldEmail].(string); ok {
		res.Email = v
	}
	if v, ok := r.Fields[fieldStartsAt].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			res.StartsAt = t
		}
	}
	if v, ok := r.Fields[fieldPartySize].(float64); ok {
		res.PartySize = int(v)
	}
	if v, ok := r.Fields[fieldStatus].(string); ok {
		res.Status = mesa.ReservationStatus(v)
	}
	if v, ok := r.Fields[fieldNotes].(string); ok {
		res.Notes = v
	}
	return res
}
