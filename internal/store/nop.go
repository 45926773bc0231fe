package store

import (
	"context"

	"github.com/amishk599/vacancywatch/internal/model"
)

// NopStore is a no-op store used in dry-run mode. It never records anything,
// so every vacancy on the page appears new on each poll.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Load(context.Context) (model.KnownSet, error) { return model.NewKnownSet(), nil }
func (s *NopStore) Save(context.Context, model.KnownSet) error    { return nil }
func (s *NopStore) Close() error                                 { return nil }
