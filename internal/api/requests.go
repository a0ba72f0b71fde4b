package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type GenerateScriptRequest struct {
	ProspectID string `json:"prospect_id" validate:"required,uuid"`
	ScriptType string `json:"script_type" validate:"required,oneof=approach follow_up objection"`
}

// Feedback values are checked by the script manager so the API and NATS paths reject the same set.
type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified converted lost"`
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}
