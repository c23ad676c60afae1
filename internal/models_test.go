package internal

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr bool
	}{
		{name: "number", input: `{"id":42}`, want: "42"},
		{name: "string", input: `{"id":"b7f1"}`, want: "b7f1"},
		{name: "null", input: `{"id":null}`, want: ""},
		{name: "object", input: `{"id":{}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			err := json.Unmarshal([]byte(tt.input), &u)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && u.ID != tt.want {
				t.Errorf("ID = %q, want %q", u.ID, tt.want)
			}
		})
	}
}

func TestID_MarshalKeepsShape(t *testing.T) {
	data, err := json.Marshal(User{ID: "7", Email: "a@b.co", Name: "A"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"id":7,"email":"a@b.co","name":"A"}` {
		t.Errorf("Marshal() = %s", data)
	}

	data, err = json.Marshal(User{ID: "u-7"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"id":"u-7","email":"","name":""}` {
		t.Errorf("Marshal() = %s", data)
	}

	out, err := yaml.Marshal(TaskCategory{ID: "3", Name: "Home", Color: "#FF6B6B"})
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if !strings.HasPrefix(string(out), "id: 3\n") {
		t.Errorf("yaml.Marshal() = %q, want an unquoted numeric id", out)
	}
}

func TestTaskFilters_Values(t *testing.T) {
	tests := []struct {
		name    string
		filters TaskFilters
		want    string
	}{
		{name: "empty", filters: TaskFilters{}, want: ""},
		{name: "status only", filters: TaskFilters{Status: "pending"}, want: "status=pending"},
		{
			name:    "all set",
			filters: TaskFilters{Page: 2, Limit: 10, Status: "completed", CategoryID: "4", Search: "milk & eggs", Sort: "due_date"},
			want:    "category_id=4&limit=10&page=2&search=milk+%26+eggs&sort=due_date&status=completed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Values().Encode(); got != tt.want {
				t.Errorf("Values().Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisterRequest_ConfirmPasswordNotSent(t *testing.T) {
	data, err := json.Marshal(RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "pw", ConfirmPassword: "pw"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(m) != 3 {
		t.Errorf("register body = %s, want exactly name, email, password", data)
	}
}
