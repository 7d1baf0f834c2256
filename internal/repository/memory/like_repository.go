package memory

import (
	"context"
	"sort"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
)

type likeRepository struct {
	store *Store
}

func NewLikeRepository(store *Store) repository.LikeRepository {
	return &likeRepository{store: store}
}

func (r *likeRepository) Create(ctx context.Context, fromID, toID int64) (bool, error) {
	defer r.store.lock(ctx)()
	d := r.store.data
	key := likeKey{from: fromID, to: toID}
	if _, ok := d.likes[key]; ok {
		return false, nil
	}
	if _, ok := d.profiles[fromID]; !ok {
		return false, domain.ErrProfileNotFound
	}
	if _, ok := d.profiles[toID]; !ok {
		return false, domain.ErrProfileNotFound
	}
	d.nextLikeID++
	d.likes[key] = &domain.LikeEdge{
		ID:         d.nextLikeID,
		FromUserID: fromID,
		ToUserID:   toID,
		CreatedAt:  r.store.now(),
	}
	return true, nil
}

func (r *likeRepository) Exists(ctx context.Context, fromID, toID int64) (bool, error) {
	defer r.store.lock(ctx)()
	_, ok := r.store.data.likes[likeKey{from: fromID, to: toID}]
	return ok, nil
}

func (r *likeRepository) DeletePair(ctx context.Context, id1, id2 int64) error {
	defer r.store.lock(ctx)()
	delete(r.store.data.likes, likeKey{from: id1, to: id2})
	delete(r.store.data.likes, likeKey{from: id2, to: id1})
	return nil
}

func (r *likeRepository) GetLikesReceived(ctx context.Context, toID int64, limit int) ([]*domain.LikeEdge, error) {
	defer r.store.lock(ctx)()
	d := r.store.data
	out := []*domain.LikeEdge{}
	for k, l := range d.likes {
		if k.to != toID {
			continue
		}
		if from, ok := d.profiles[k.from]; !ok || !from.IsAvailable() {
			continue
		}
		c := *l
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *likeRepository) CountGiven(ctx context.Context, fromID int64) (int, error) {
	defer r.store.lock(ctx)()
	n := 0
	for k := range r.store.data.likes {
		if k.from == fromID {
			n++
		}
	}
	return n, nil
}

func (r *likeRepository) CountReceived(ctx context.Context, toID int64) (int, error) {
	defer r.store.lock(ctx)()
	n := 0
	for k := range r.store.data.likes {
		if k.to == toID {
			n++
		}
	}
	return n, nil
}
