package core

import (
	"encoding/json"
	"fmt"

	"github.com/voidshard/keel/internal/utils"
	ie "github.com/voidshard/keel/pkg/errors"
	"github.com/voidshard/keel/pkg/structs"
)

const (
	// max values
	maxTypeLength    = 255
	maxOwnerLength   = 255
	maxParamsLength  = 1 << 20
	maxStepLength    = 255
	maxMessageLength = 2000
	maxDataLength    = 4 << 20
)

func validateCreateJobRequest(cjr *structs.CreateJobRequest) error {
	if cjr == nil {
		return fmt.Errorf("%w create job request is nil", ie.ErrInvalidArg)
	}
	if cjr.Type == "" {
		return ie.ErrNoJobType
	}
	if len(cjr.Type) > maxTypeLength {
		return fmt.Errorf("%w job type %s is %d chars, max %d", ie.ErrMaxExceeded, cjr.Type, len(cjr.Type), maxTypeLength)
	}
	if cjr.OwnerID == "" {
		return ie.ErrNoOwner
	}
	if len(cjr.OwnerID) > maxOwnerLength {
		return fmt.Errorf("%w owner id is %d chars, max %d", ie.ErrMaxExceeded, len(cjr.OwnerID), maxOwnerLength)
	}
	if len(cjr.Params) > maxParamsLength {
		return fmt.Errorf("%w job params are %d bytes, max %d", ie.ErrMaxExceeded, len(cjr.Params), maxParamsLength)
	}
	if len(cjr.Params) > 0 && !json.Valid(cjr.Params) {
		return fmt.Errorf("%w job params are not valid json", ie.ErrInvalidArg)
	}
	return nil
}

func validateJobID(id string) error {
	if !utils.IsValidID(id) {
		return fmt.Errorf("%w job id %s", ie.ErrInvalidArg, id)
	}
	return nil
}

func validateProgress(progress int, msg string) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("%w progress %d must be within 0-100", ie.ErrInvalidArg, progress)
	}
	if len(msg) > maxMessageLength {
		return fmt.Errorf("%w message is %d chars, max %d", ie.ErrMaxExceeded, len(msg), maxMessageLength)
	}
	return nil
}

func validateCheckpoint(step string, progress int, data *structs.CheckpointData) error {
	if step == "" {
		return fmt.Errorf("%w checkpoint step is required", ie.ErrInvalidArg)
	}
	if len(step) > maxStepLength {
		return fmt.Errorf("%w checkpoint step is %d chars, max %d", ie.ErrMaxExceeded, len(step), maxStepLength)
	}
	if err := validateProgress(progress, ""); err != nil {
		return err
	}
	if data != nil && len(data.Body) > maxDataLength {
		return fmt.Errorf("%w checkpoint data is %d bytes, max %d", ie.ErrMaxExceeded, len(data.Body), maxDataLength)
	}
	return nil
}
