package directus

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bounteer/intentdash/internal/domain"
)

// Collection names in the CMS schema.
const (
	CollectionIntents   = "hiring_intents"
	CollectionStateRows = "hiring_intent_states"
	CollectionActions   = "intent_actions"
	CollectionSpaces    = "spaces"
)

// listMeta is the response metadata returned when meta=filter_count is set.
type listMeta struct {
	FilterCount int `json:"filter_count"`
}

// intentRecord is the wire shape of a hiring intent record.
type intentRecord struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Category       string   `json:"category"`
	Location       string   `json:"location"`
	Skills         []string `json:"skills"`
	PredictedStart string   `json:"predicted_start"`
	Space          int      `json:"space"`
	URL            string   `json:"url"`
	DateCreated    string   `json:"date_created"`
}

func (r intentRecord) toDomain() domain.Intent {
	return domain.Intent{
		ID:             r.ID,
		Title:          r.Title,
		Company:        r.Company,
		Category:       r.Category,
		Location:       r.Location,
		Skills:         r.Skills,
		PredictedStart: r.PredictedStart,
		Space:          r.Space,
		URL:            r.URL,
		CreatedAt:      r.DateCreated,
	}
}

// stateRowRecord is the wire shape of a per-user intent state row.
type stateRowRecord struct {
	ID          int    `json:"id"`
	Intent      int    `json:"intent"`
	UserCreated string `json:"user_created"`
	Status      string `json:"status"`
	Reason      string `json:"reason"`
	DateCreated string `json:"date_created"`
}

func (r stateRowRecord) toDomain() domain.StateRow {
	return domain.StateRow{
		ID:        r.ID,
		IntentID:  r.Intent,
		UserID:    r.UserCreated,
		Status:    domain.Status(r.Status),
		Reason:    r.Reason,
		CreatedAt: r.DateCreated,
	}
}

// actionRecord is the wire shape of an intent action sub-record.
type actionRecord struct {
	ID          int    `json:"id"`
	Intent      int    `json:"intent"`
	Type        string `json:"type"`
	ProfileURL  string `json:"profile_url"`
	Phone       string `json:"phone"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Note        string `json:"note"`
	Done        bool   `json:"done"`
	DateCreated string `json:"date_created"`
}

func (r actionRecord) toDomain() domain.Action {
	return domain.Action{
		ID:         r.ID,
		IntentID:   r.Intent,
		Kind:       domain.ActionKind(r.Type),
		ProfileURL: r.ProfileURL,
		Phone:      r.Phone,
		Subject:    r.Subject,
		Body:       r.Body,
		Note:       r.Note,
		Done:       r.Done,
		CreatedAt:  r.DateCreated,
	}
}

// CurrentUserID returns the authenticated user's ID from /users/me.
// Returns ErrNoUser (wrapped) when the CMS rejects the credentials.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	q := Query{}.Fields("id")
	if err := c.do(ctx, http.MethodGet, "/users/me", q.Values(), nil, &resp); err != nil {
		if fe, ok := err.(*FetchError); ok && (fe.StatusCode == http.StatusUnauthorized || fe.StatusCode == http.StatusForbidden) {
			return "", fmt.Errorf("%w: %v", ErrNoUser, err)
		}
		return "", fmt.Errorf("failed to resolve current user: %w", err)
	}
	if resp.Data.ID == "" {
		return "", ErrNoUser
	}
	return resp.Data.ID, nil
}

// ListIntents fetches hiring intents matching the query.
// Returns the intents plus the server-reported total count when the query
// requested meta=filter_count (zero otherwise).
func (c *Client) ListIntents(ctx context.Context, q Query) ([]domain.Intent, int, error) {
	var resp struct {
		Data []intentRecord `json:"data"`
		Meta listMeta       `json:"meta"`
	}
	if err := c.do(ctx, http.MethodGet, "/items/"+CollectionIntents, q.Values(), nil, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to list intents: %w", err)
	}

	intents := make([]domain.Intent, 0, len(resp.Data))
	for _, rec := range resp.Data {
		intents = append(intents, rec.toDomain())
	}
	return intents, resp.Meta.FilterCount, nil
}

// GetIntent fetches a single intent by ID.
func (c *Client) GetIntent(ctx context.Context, id int) (domain.Intent, error) {
	var resp struct {
		Data intentRecord `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/items/"+CollectionIntents+"/"+strconv.Itoa(id), nil, nil, &resp); err != nil {
		return domain.Intent{}, fmt.Errorf("failed to get intent %d: %w", id, err)
	}
	return resp.Data.toDomain(), nil
}

// ListActions fetches the action sub-records for the given intent IDs in one
// batched call.
func (c *Client) ListActions(ctx context.Context, intentIDs []int) ([]domain.Action, error) {
	if len(intentIDs) == 0 {
		return nil, nil
	}
	q := Query{}.In("intent", intentIDs).Sort("date_created")
	var resp struct {
		Data []actionRecord `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/items/"+CollectionActions, q.Values(), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}

	actions := make([]domain.Action, 0, len(resp.Data))
	for _, rec := range resp.Data {
		actions = append(actions, rec.toDomain())
	}
	return actions, nil
}

// ListStateRows fetches up to limit state rows created by the given user.
func (c *Client) ListStateRows(ctx context.Context, userID string, limit int) ([]domain.StateRow, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	q := Query{}.Eq("user_created", userID).Limit(limit)
	var resp struct {
		Data []stateRowRecord `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/items/"+CollectionStateRows, q.Values(), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list state rows: %w", err)
	}

	rows := make([]domain.StateRow, 0, len(resp.Data))
	for _, rec := range resp.Data {
		rows = append(rows, rec.toDomain())
	}
	return rows, nil
}

// FindStateRow looks up the existing state row for one (user, intent) pair.
// Returns nil without error when no row exists.
func (c *Client) FindStateRow(ctx context.Context, userID string, intentID int) (*domain.StateRow, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	q := Query{}.Eq("user_created", userID).EqInt("intent", intentID).Limit(1)
	var resp struct {
		Data []stateRowRecord `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/items/"+CollectionStateRows, q.Values(), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to find state row: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	row := resp.Data[0].toDomain()
	return &row, nil
}

// CreateStateRow creates a new state row placing an intent in a column.
func (c *Client) CreateStateRow(ctx context.Context, intentID int, status domain.Status, reason string) (domain.StateRow, error) {
	body := map[string]interface{}{
		"intent": intentID,
		"status": string(status),
	}
	if reason != "" {
		body["reason"] = reason
	}
	var resp struct {
		Data stateRowRecord `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/items/"+CollectionStateRows, nil, body, &resp); err != nil {
		return domain.StateRow{}, fmt.Errorf("failed to create state row: %w", err)
	}
	return resp.Data.toDomain(), nil
}

// UpdateStateRow patches an existing state row's status (and reason).
func (c *Client) UpdateStateRow(ctx context.Context, rowID int, status domain.Status, reason string) error {
	body := map[string]interface{}{
		"status": string(status),
	}
	if reason != "" {
		body["reason"] = reason
	}
	if err := c.do(ctx, http.MethodPatch, "/items/"+CollectionStateRows+"/"+strconv.Itoa(rowID), nil, body, nil); err != nil {
		return fmt.Errorf("failed to update state row %d: %w", rowID, err)
	}
	return nil
}

// DeleteStateRow removes a state row, reverting the intent to the signal
// column for this user.
func (c *Client) DeleteStateRow(ctx context.Context, rowID int) error {
	if err := c.do(ctx, http.MethodDelete, "/items/"+CollectionStateRows+"/"+strconv.Itoa(rowID), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete state row %d: %w", rowID, err)
	}
	return nil
}

// ListSpaces fetches the available workspaces.
func (c *Client) ListSpaces(ctx context.Context) ([]domain.Space, error) {
	q := Query{}.Fields("id", "name").Sort("name")
	var resp struct {
		Data []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/items/"+CollectionSpaces, q.Values(), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}

	spaces := make([]domain.Space, 0, len(resp.Data))
	for _, rec := range resp.Data {
		spaces = append(spaces, domain.Space{ID: rec.ID, Name: rec.Name})
	}
	return spaces, nil
}
