// Package controller binds console form actions to inventory API calls and
// reflects each outcome into a domain.FormState.
//
// Every action follows one shape: read the form, call the API, then either
// populate the form or surface the server's message in the flash slot. No
// action returns early with the state half-updated. The returned error is
// informational: by the time it is returned the failure is already visible
// in the state.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"invadmin/internal/client"
	"invadmin/internal/domain"
	"invadmin/internal/validate"
)

// Flash texts shown to the operator.
const (
	MsgSuccess          = "Success"
	MsgSearchByIDCond   = "Success (Based on product id and condition)"
	MsgSearchByID       = "Success (Based on product id)"
	MsgDeleted          = "Product has been Deleted!"
	MsgServerError      = "Server error!"
	MsgRetrieveRequires = "Product ID and Condition are required"
)

// Button actions, named after the page's "<action>-btn" ids.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionRetrieve = "retrieve"
	ActionDelete   = "delete"
	ActionSearch   = "search"
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
	ActionSet      = "set"
	ActionClear    = "clear"
)

var (
	ErrMissingKey    = errors.New("product id and condition are required")
	ErrUnknownAction = errors.New("unknown action")
)

// API is the subset of the inventory client the controller drives.
type API interface {
	Create(ctx context.Context, f domain.Fields) (domain.Record, error)
	Update(ctx context.Context, id, condition string, f domain.Fields) (domain.Record, error)
	Get(ctx context.Context, id, condition string) (domain.Record, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, f client.SearchFilter) (domain.SearchResult, error)
	Increase(ctx context.Context, id, condition, value string) (domain.Record, error)
	Decrease(ctx context.Context, id, condition, value string) (domain.Record, error)
	SetQuantity(ctx context.Context, id, condition, value string) (domain.Record, error)
}

type FormController struct {
	API API
}

func New(api API) *FormController { return &FormController{API: api} }

// ActionName normalises a submitted button value or id ("Create-btn" -> "create").
func ActionName(s string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "-btn")
}

// Dispatch runs the action named by a console button.
func (c *FormController) Dispatch(ctx context.Context, action string, st *domain.FormState) error {
	switch ActionName(action) {
	case ActionCreate:
		return c.Create(ctx, st)
	case ActionUpdate:
		return c.Update(ctx, st)
	case ActionRetrieve:
		return c.Retrieve(ctx, st)
	case ActionDelete:
		return c.Delete(ctx, st)
	case ActionSearch:
		return c.Search(ctx, st)
	case ActionIncrease:
		return c.Increase(ctx, st)
	case ActionDecrease:
		return c.Decrease(ctx, st)
	case ActionSet:
		return c.SetQuantity(ctx, st)
	case ActionClear:
		c.Clear(st)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

func (c *FormController) Create(ctx context.Context, st *domain.FormState) error {
	st.Flash = ""
	rec, err := c.API.Create(ctx, st.Fields)
	return c.apply(st, rec, err)
}

func (c *FormController) Update(ctx context.Context, st *domain.FormState) error {
	st.Flash = ""
	rec, err := c.API.Update(ctx, st.Fields.ProductID, st.Fields.Condition, st.Fields)
	return c.apply(st, rec, err)
}

// Retrieve needs both product id and condition; without them no call is made.
func (c *FormController) Retrieve(ctx context.Context, st *domain.FormState) error {
	st.Flash = ""
	if !validate.Present(st.Fields.ProductID, st.Fields.Condition) {
		st.Flash = MsgRetrieveRequires
		return ErrMissingKey
	}
	rec, err := c.API.Get(ctx, st.Fields.ProductID, st.Fields.Condition)
	if err != nil {
		st.ClearRecord()
		st.Flash = failureMessage(err)
		return err
	}
	st.Populate(rec)
	st.Flash = MsgSuccess
	return nil
}

// Delete leaves the form untouched on failure.
func (c *FormController) Delete(ctx context.Context, st *domain.FormState) error {
	st.Flash = ""
	if err := c.API.Delete(ctx, st.Fields.ProductID); err != nil {
		st.Flash = MsgServerError
		return err
	}
	st.ClearRecord()
	st.Flash = MsgDeleted
	return nil
}

// Search renders whatever shape the API returned. The flash names the
// filters that were supplied.
func (c *FormController) Search(ctx context.Context, st *domain.FormState) error {
	st.Flash = ""
	f := client.SearchFilter{
		ProductID:   strings.TrimSpace(st.Fields.ProductID),
		ProductName: strings.TrimSpace(st.Fields.ProductName),
		Condition:   strings.TrimSpace(st.Fields.Condition),
	}
	res, err := c.API.Search(ctx, f)
	if err != nil {
		st.Flash = failureMessage(err)
		return err
	}
	st.Results = &res

	switch {
	case f.ProductID != "" && f.Condition != "":
		st.Flash = MsgSearchByIDCond
	case f.ProductID != "":
		st.Flash = MsgSearchByID
	default:
		st.Flash = MsgSuccess
	}
	return nil
}

func (c *FormController) Increase(ctx context.Context, st *domain.FormState) error {
	st.Flash = ""
	rec, err := c.API.Increase(ctx, st.Fields.ProductID, st.Fields.Condition, st.Fields.ChangeValue)
	return c.apply(st, rec, err)
}

func (c *FormController) Decrease(ctx context.Context, st *domain.FormState) error {
	st.Flash = ""
	rec, err := c.API.Decrease(ctx, st.Fields.ProductID, st.Fields.Condition, st.Fields.ChangeValue)
	return c.apply(st, rec, err)
}

func (c *FormController) SetQuantity(ctx context.Context, st *domain.FormState) error {
	st.Flash = ""
	rec, err := c.API.SetQuantity(ctx, st.Fields.ProductID, st.Fields.Condition, st.Fields.ChangeValue)
	return c.apply(st, rec, err)
}

// Clear is local only.
func (c *FormController) Clear(st *domain.FormState) {
	st.Fields = domain.Fields{}
	st.Snapshot = nil
	st.Flash = ""
}

func (c *FormController) apply(st *domain.FormState, rec domain.Record, err error) error {
	if err != nil {
		st.Flash = failureMessage(err)
		return err
	}
	st.Populate(rec)
	st.Flash = MsgSuccess
	return nil
}

// failureMessage prefers the server's own wording.
func failureMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgServerError
}
