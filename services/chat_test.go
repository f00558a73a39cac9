package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/maybepratikk/flexihub-landing-connect-sub000/errs"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/realtime"
)

// activeContract runs the accept flow and returns the resulting contract.
func activeContract(f *fixture) (client, freelancer Actor, contract *models.Contract) {
	f.t.Helper()
	client = f.user(models.RoleClient, "casey")
	freelancer = f.user(models.RoleFreelancer, "fran")
	job := f.job(client, "REST API")
	application := f.apply(freelancer, job, 30)
	result, err := f.market.ReviewApplication(f.ctx, client, application.ID, models.ReviewAccepted)
	if err != nil {
		f.t.Fatalf("accept: %v", err)
	}
	contract, err = f.store.Contracts().FindByID(f.ctx, *result.ContractID)
	if err != nil {
		f.t.Fatal(err)
	}
	return client, freelancer, contract
}

func TestMarkReadOnlyFlipsCounterpartMessages(t *testing.T) {
	f := newFixture(t)
	client, freelancer, contract := activeContract(f)

	for _, text := range []string{"first", "second"} {
		if _, err := f.market.SendMessage(f.ctx, freelancer, contract.ID, text, nil); err != nil {
			t.Fatal(err)
		}
	}

	// The seed message is the client's own; only the freelancer's two count.
	unread, err := f.market.UnreadCount(f.ctx, client, contract.ID)
	if err != nil || unread != 2 {
		t.Fatalf("client unread = %d, %v", unread, err)
	}
	flipped, err := f.market.MarkRead(f.ctx, client, contract.ID)
	if err != nil || flipped != 2 {
		t.Fatalf("flipped = %d, %v", flipped, err)
	}
	if unread, _ := f.market.UnreadCount(f.ctx, client, contract.ID); unread != 0 {
		t.Fatalf("client unread after MarkRead = %d", unread)
	}
	if unread, _ := f.market.UnreadCount(f.ctx, freelancer, contract.ID); unread != 1 {
		t.Fatalf("freelancer unread = %d, want the seed message", unread)
	}

	thread, err := f.market.Messages(f.ctx, client, contract.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, msg := range thread {
		if msg.SenderID == client.UserID && msg.Read {
			t.Fatalf("client's own message flipped by client's MarkRead")
		}
	}
}

func TestSendMessageRules(t *testing.T) {
	f := newFixture(t)
	client, _, contract := activeContract(f)
	stranger := f.user(models.RoleFreelancer, "sam")
	image := "https://cdn.example.com/a.png"

	if _, err := f.market.SendMessage(f.ctx, stranger, contract.ID, "hello", nil); !errs.IsNotParty(err) {
		t.Fatalf("stranger err = %v", err)
	}
	if _, err := f.market.Messages(f.ctx, stranger, contract.ID); errs.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("stranger read err = %v", err)
	}
	if _, err := f.market.SendMessage(f.ctx, client, contract.ID, "   ", nil); errs.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("empty message err = %v", err)
	}
	if msg, err := f.market.SendMessage(f.ctx, client, contract.ID, "", &image); err != nil || msg.ImageURL == nil {
		t.Fatalf("image-only message = %+v, %v", msg, err)
	}
	if _, err := f.market.SendMessage(f.ctx, client, contract.ID, strings.Repeat("x", maxMessageLength+1), nil); errs.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("oversized message err = %v", err)
	}
	if _, err := f.market.SendMessage(f.ctx, client, contract.ID, strings.Repeat("é", maxMessageLength), nil); err != nil {
		t.Fatalf("multibyte message at the limit err = %v", err)
	}
	if _, err := f.market.SendMessage(f.ctx, client, contract.ID, strings.Repeat("é", maxMessageLength+1), nil); errs.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("multibyte message over the limit err = %v", err)
	}

	if _, err := f.market.TerminateContract(f.ctx, client, contract.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.market.SendMessage(f.ctx, client, contract.ID, "still there?", nil); errs.StatusOf(err) != http.StatusConflict {
		t.Fatalf("closed contract err = %v", err)
	}
}

func TestMessagesStreamThroughHub(t *testing.T) {
	hub := realtime.NewHub()
	f := newFixture(t)
	f.market = NewMarketplace(f.store, WithPublisher(hub), WithClock(func() time.Time { return testNow }))
	client, freelancer, contract := activeContract(f)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := hub.Subscribe(ctx, realtime.TopicChatMessages, realtime.FieldEquals("contract_id", contract.ID.String()))
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	msg, err := f.market.SendMessage(f.ctx, freelancer, contract.ID, "ping", nil)
	if err != nil {
		t.Fatal(err)
	}
	select {
	case event := <-sub.Events:
		if event.Action != realtime.ActionInsert || event.RecordID != msg.ID.String() {
			t.Fatalf("unexpected event %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event for sent message")
	}

	if _, err := f.market.MarkRead(f.ctx, client, contract.ID); err != nil {
		t.Fatal(err)
	}
	select {
	case event := <-sub.Events:
		if event.Action != realtime.ActionUpdate {
			t.Fatalf("unexpected event %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event for MarkRead")
	}
}

func TestJobGreeting(t *testing.T) {
	if got := jobGreeting(nil); got != genericGreeting {
		t.Fatalf("nil job greeting = %q", got)
	}
	if got := jobGreeting(&models.Job{Title: "  "}); got != genericGreeting {
		t.Fatalf("untitled job greeting = %q", got)
	}
	got := jobGreeting(&models.Job{Title: "Logo", Description: "A fresh logo"})
	if !strings.Contains(got, `"Logo"`) || !strings.Contains(got, "A fresh logo") {
		t.Fatalf("greeting = %q", got)
	}
	long := excerpt(strings.Repeat("a", greetingExcerptLimit+50))
	if !strings.HasSuffix(long, "...") || len([]rune(long)) != greetingExcerptLimit+3 {
		t.Fatalf("excerpt length = %d", len([]rune(long)))
	}
}
