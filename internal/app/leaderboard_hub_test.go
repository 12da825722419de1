package app_test

import (
	"testing"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
)

func TestHubDeliversOnlyToQuizSubscribers(t *testing.T) {
	hub := app.NewLeaderboardHub()
	a, cancelA := hub.Subscribe(domain.Leaderboard{QuizID: 1})
	defer cancelA()
	b, cancelB := hub.Subscribe(domain.Leaderboard{QuizID: 2})
	defer cancelB()
	<-a
	<-b

	hub.Publish(domain.Leaderboard{QuizID: 1, Entries: []domain.LeaderboardEntry{{Rank: 1, Username: "ann"}}})

	got := <-a
	if len(got.Entries) != 1 {
		t.Fatalf("expected update for quiz 1, got %+v", got)
	}
	select {
	case lb := <-b:
		t.Fatalf("quiz 2 subscriber received %+v", lb)
	default:
	}
}

func TestHubKeepsLatestForSlowSubscriber(t *testing.T) {
	hub := app.NewLeaderboardHub()
	ch, cancel := hub.Subscribe(domain.Leaderboard{QuizID: 1})
	defer cancel()

	for i := 1; i <= 20; i++ {
		hub.Publish(domain.Leaderboard{QuizID: 1, Entries: make([]domain.LeaderboardEntry, i)})
	}

	var last domain.Leaderboard
	for len(ch) > 0 {
		last = <-ch
	}
	if len(last.Entries) != 20 {
		t.Fatalf("expected latest snapshot to survive, got %d entries", len(last.Entries))
	}
}

func TestHubCancelClosesAndForgets(t *testing.T) {
	hub := app.NewLeaderboardHub()
	ch, cancel := hub.Subscribe(domain.Leaderboard{QuizID: 3})
	if hub.Subscribers(3) != 1 {
		t.Fatalf("expected one subscriber")
	}
	cancel()
	cancel()
	if hub.Subscribers(3) != 0 {
		t.Fatalf("expected no subscribers after cancel")
	}
	<-ch // initial snapshot stays readable
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	hub.Publish(domain.Leaderboard{QuizID: 3})
}
