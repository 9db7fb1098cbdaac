package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/wb-go/wbf/retry"

	"github.com/temirbekov/assistant-backend/internal/expiry"
	mocks "github.com/temirbekov/assistant-backend/internal/mocks/worker"
	"github.com/temirbekov/assistant-backend/internal/model"
	"github.com/temirbekov/assistant-backend/internal/rabbitmq/queue"
)

func setupDispatcher(t *testing.T) (*Dispatcher, *mocks.MockdueLister, *mocks.MockownerResolver, *mocks.MockdigestPublisher) {
	ctrl := gomock.NewController(t)
	due := mocks.NewMockdueLister(ctrl)
	users := mocks.NewMockownerResolver(ctrl)
	publisher := mocks.NewMockdigestPublisher(ctrl)

	d := NewDispatcher(due, users, publisher, 24*time.Hour, time.Hour)
	return d, due, users, publisher
}

func TestDispatch_PublishesOneDigestPerOwner(t *testing.T) {
	d, due, users, publisher := setupDispatcher(t)

	alice := uuid.New()
	bob := uuid.New()
	expiresAt := time.Now().Add(time.Hour)

	report := expiry.WindowReport{
		Users: map[string][]model.Record{
			alice.String(): {
				{ID: uuid.New(), OwnerID: alice, Title: "pay rent", ExpiresAt: &expiresAt, Category: model.CategoryPayments},
				{ID: uuid.New(), OwnerID: alice, Title: "dentist", ExpiresAt: &expiresAt, Category: model.CategoryReminders},
			},
			bob.String(): {
				{ID: uuid.New(), OwnerID: bob, Title: "submit report", ExpiresAt: &expiresAt, Category: model.CategoryTasks},
			},
		},
	}

	strategy := retry.Strategy{Attempts: 1}

	due.EXPECT().DueWithinWindow(gomock.Any(), gomock.Any(), 24*time.Hour).Return(report, nil)
	users.EXPECT().GetProfile(gomock.Any(), alice).Return(model.UserProfile{ID: alice, WhatsAppNumber: "+77001111111"}, nil)
	users.EXPECT().GetProfile(gomock.Any(), bob).Return(model.UserProfile{ID: bob, WhatsAppNumber: "+77002222222"}, nil)

	published := make(map[string]string)
	publisher.EXPECT().Publish(gomock.Any(), strategy).DoAndReturn(
		func(msg queue.OutboundMessage, _ retry.Strategy) error {
			published[msg.To] = msg.Body
			return nil
		}).Times(2)

	d.dispatch(context.Background(), strategy)

	assert.Len(t, published, 2)
	assert.Contains(t, published["+77001111111"], "pay rent")
	assert.Contains(t, published["+77001111111"], "dentist")
	assert.Contains(t, published["+77002222222"], "submit report")
}

func TestDispatch_SkipsOwnerWhenProfileLookupFails(t *testing.T) {
	d, due, users, publisher := setupDispatcher(t)

	alice := uuid.New()
	bob := uuid.New()
	expiresAt := time.Now().Add(time.Hour)

	report := expiry.WindowReport{
		Users: map[string][]model.Record{
			alice.String(): {{ID: uuid.New(), OwnerID: alice, Title: "water plants", ExpiresAt: &expiresAt}},
			bob.String():   {{ID: uuid.New(), OwnerID: bob, Title: "call mom", ExpiresAt: &expiresAt}},
		},
	}

	strategy := retry.Strategy{Attempts: 1}

	due.EXPECT().DueWithinWindow(gomock.Any(), gomock.Any(), 24*time.Hour).Return(report, nil)
	users.EXPECT().GetProfile(gomock.Any(), alice).Return(model.UserProfile{}, errors.New("not found"))
	users.EXPECT().GetProfile(gomock.Any(), bob).Return(model.UserProfile{ID: bob, WhatsAppNumber: "+77002222222"}, nil)
	publisher.EXPECT().Publish(gomock.Any(), strategy).Return(nil)

	d.dispatch(context.Background(), strategy)
}

func TestDispatch_NoDigestWhenAggregationFails(t *testing.T) {
	d, due, _, _ := setupDispatcher(t)

	due.EXPECT().
		DueWithinWindow(gomock.Any(), gomock.Any(), 24*time.Hour).
		Return(expiry.WindowReport{}, expiry.ErrAllCategoriesFailed)

	d.dispatch(context.Background(), retry.Strategy{Attempts: 1})
}

func TestRenderDigest(t *testing.T) {
	expiresAt := time.Date(2026, time.March, 5, 18, 0, 0, 0, time.UTC)

	body := renderDigest([]model.Record{
		{Title: "electricity bill", ExpiresAt: &expiresAt, Category: model.CategoryPayments},
		{Title: "standup", Category: model.CategoryReminders},
	})

	lines := strings.Split(strings.TrimSpace(body), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "[payment] electricity bill")
	assert.Contains(t, lines[1], "due Mar 5 18:00")
	assert.Contains(t, lines[2], "[reminder] standup")
}
