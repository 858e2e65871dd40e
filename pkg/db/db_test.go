package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"golang.org/x/oauth2"
)

// TestSaveAndGetToken ensures that OAuth tokens are stored and retrieved
// without modification.
func TestSaveAndGetToken(t *testing.T) {
	d, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	ctx := context.Background()
	tok := &oauth2.Token{AccessToken: "abc", RefreshToken: "refresh"}
	if err := d.SaveToken(ctx, "u", tok); err != nil {
		t.Fatal(err)
	}
	got, err := d.GetToken(ctx, "u")
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != tok.AccessToken {
		t.Fatalf("expected %s got %s", tok.AccessToken, got.AccessToken)
	}
	if got.RefreshToken != tok.RefreshToken {
		t.Fatalf("expected refresh %s got %s", tok.RefreshToken, got.RefreshToken)
	}
}

// TestSaveTokenReplaces verifies a second login overwrites the stored token.
func TestSaveTokenReplaces(t *testing.T) {
	d, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	ctx := context.Background()
	d.SaveToken(ctx, "u", &oauth2.Token{AccessToken: "old"})
	if err := d.SaveToken(ctx, "u", &oauth2.Token{AccessToken: "new"}); err != nil {
		t.Fatal(err)
	}
	got, err := d.GetToken(ctx, "u")
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != "new" {
		t.Fatalf("token not replaced: %s", got.AccessToken)
	}
}

// TestGetTokenMissing checks unknown users yield sql.ErrNoRows.
func TestGetTokenMissing(t *testing.T) {
	d, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if _, err := d.GetToken(context.Background(), "nobody"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}
