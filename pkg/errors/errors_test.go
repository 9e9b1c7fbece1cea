package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidationFail, http.StatusBadRequest},
		{CodeShiftNotRequired, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeInconsistentState, http.StatusConflict},
		{CodeUnknownAction, http.StatusInternalServerError},
		{CodeConstraintNotFound, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code, "x").HTTPStatus; got != tt.want {
				t.Errorf("HTTPStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("dispatch: %w", UnknownAction("Bogus"))

	if !Is(err, CodeUnknownAction) {
		t.Error("Is should see through fmt.Errorf wrapping")
	}
	if GetCode(err) != CodeUnknownAction {
		t.Errorf("GetCode = %s", GetCode(err))
	}
	if GetHTTPStatus(fmt.Errorf("plain")) != http.StatusInternalServerError {
		t.Error("plain errors should map to 500")
	}
}

func TestFatal(t *testing.T) {
	if !ConstraintNotFound("x").Fatal() {
		t.Error("unregistered constraint should be fatal")
	}
	if InconsistentState("x").Fatal() {
		t.Error("inconsistent state is recoverable")
	}
}

func TestValidationErrors(t *testing.T) {
	var ve ValidationErrors
	if ve.HasErrors() {
		t.Fatal("empty set reports errors")
	}
	ve.Add("date", "格式错误")
	ve.Add("name", "必填")

	appErr := ve.ToAppError()
	if appErr.Code != CodeValidationFail {
		t.Errorf("Code = %s", appErr.Code)
	}
	if len(appErr.Fields) != 2 {
		t.Errorf("Fields = %v", appErr.Fields)
	}
}
