package handler

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"

	"github.com/runclubno/runclub-backend/internal/model"
	"github.com/runclubno/runclub-backend/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestAttendeeCSVEscaping(t *testing.T) {
	// Names with commas, quotes and newlines must survive a CSV round
	// trip intact.
	reg := repository.EventRegistrationRow{
		MemberName:  `Nordmann, Ola "Runner"`,
		MemberEmail: "ola@example.com",
		Registration: model.Registration{
			Status:        model.RegStatusConfirmed,
			PaymentStatus: strPtr(model.PayStatusPaid),
			Role:          model.RoleGuest,
		},
	}
	guest := model.Attendee{
		Name:          "Kari\nHansen",
		Email:         nil,
		PaymentStatus: nil,
		Role:          model.RoleStaff,
		Notes:         strPtr("helper, bib pickup"),
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ExportCSVHeader); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := w.Write(registrationCSVRow(reg)); err != nil {
		t.Fatalf("write member row: %v", err)
	}
	if err := w.Write(attendeeCSVRow(guest)); err != nil {
		t.Fatalf("write guest row: %v", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	wantMember := []string{"member", `Nordmann, Ola "Runner"`, "ola@example.com", "confirmed", "paid", "guest", ""}
	if !reflect.DeepEqual(records[1], wantMember) {
		t.Errorf("member row = %q, want %q", records[1], wantMember)
	}
	wantGuest := []string{"guest", "Kari\nHansen", "", "", "", "staff", "helper, bib pickup"}
	if !reflect.DeepEqual(records[2], wantGuest) {
		t.Errorf("guest row = %q, want %q", records[2], wantGuest)
	}
}

func TestAttendeeFromReqValidation(t *testing.T) {
	t.Run("defaults role to guest", func(t *testing.T) {
		a, msg := attendeeFromReq(attendeeReq{Name: "Per"})
		if msg != "" {
			t.Fatalf("unexpected error: %s", msg)
		}
		if a.Role != model.RoleGuest {
			t.Errorf("role = %q, want guest", a.Role)
		}
	})
	t.Run("rejects empty name", func(t *testing.T) {
		if _, msg := attendeeFromReq(attendeeReq{Name: "  "}); msg == "" {
			t.Error("expected error for blank name")
		}
	})
	t.Run("rejects unknown role", func(t *testing.T) {
		if _, msg := attendeeFromReq(attendeeReq{Name: "Per", Role: "vip"}); msg == "" {
			t.Error("expected error for unknown role")
		}
	})
	t.Run("rejects unknown payment status", func(t *testing.T) {
		if _, msg := attendeeFromReq(attendeeReq{Name: "Per", PaymentStatus: strPtr("maybe")}); msg == "" {
			t.Error("expected error for unknown payment status")
		}
	})
}
