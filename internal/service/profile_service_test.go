package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/model"
)

func TestProfileUpdateAndDefaults(t *testing.T) {
	repo := &fakeProfileRepo{}
	svc := NewProfileService(repo, nopLog)
	owner := uuid.New()
	ctx := context.Background()

	p, err := svc.Get(ctx, owner)
	if err != nil || p.Onboarded || p.UserID != owner {
		t.Fatalf("missing profile = %+v, %v", p, err)
	}

	level, onboarded := "SMP", true
	if _, err := svc.Update(ctx, owner, &model.UpdateProfileRequest{Level: &level, Onboarded: &onboarded}); err != nil {
		t.Fatal(err)
	}
	subject := "Matematika"
	p, err = svc.Update(ctx, owner, &model.UpdateProfileRequest{Subject: &subject})
	if err != nil {
		t.Fatal(err)
	}
	if p.Level != "SMP" || p.Subject != "Matematika" || !p.Onboarded {
		t.Errorf("profile = %+v", p)
	}
	if l, s := svc.Defaults(ctx, owner); l != "SMP" || s != "Matematika" {
		t.Errorf("defaults = %q, %q", l, s)
	}

	repo.fail = true
	if l, s := svc.Defaults(ctx, owner); l != "" || s != "" {
		t.Error("defaults should be empty on lookup failure")
	}
	if _, err := svc.Update(ctx, owner, &model.UpdateProfileRequest{Subject: &subject}); !IsPersistence(err) {
		t.Errorf("update err = %v", err)
	}
	if _, err := svc.Get(ctx, uuid.Nil); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("anonymous get err = %v", err)
	}
}
