// Package feed defines the ranked views over posts and their pagination.
//
// Every order sorts by its ranking key descending, then createdAt descending,
// then _id descending so that equal keys produce stable pages. The same
// ordering is expressed twice: as a MongoDB aggregation pipeline and as a Go
// comparator for the in-memory store.
package feed

import (
	"sort"

	"github.com/anonto42/pulse-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Order names a ranked view over the post collection
type Order string

const (
	Chronological Order = "recent"
	MostLiked     Order = "liked"
	MostCommented Order = "commented"
	MostShared    Order = "shared"
)

// Orders lists every supported order
var Orders = []Order{Chronological, MostLiked, MostCommented, MostShared}

// Valid reports whether o is a known order
func (o Order) Valid() bool {
	for _, known := range Orders {
		if o == known {
			return true
		}
	}
	return false
}

// rankField is the computed or stored field the order ranks by, empty for
// chronological.
func (o Order) rankField() string {
	switch o {
	case MostLiked:
		return "likesCount"
	case MostCommented:
		return "commentsCount"
	case MostShared:
		return "shares"
	default:
		return ""
	}
}

// Pipeline builds the aggregation pipeline returning one page of posts in order o
func Pipeline(o Order, skip, limit int64) mongo.Pipeline {
	var stages mongo.Pipeline

	switch o {
	case MostLiked:
		stages = append(stages, bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "likesCount", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}}}},
		}}})
	case MostCommented:
		stages = append(stages, bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "commentsCount", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$comments", bson.A{}}}}}}},
		}}})
	}

	sortSpec := bson.D{}
	if field := o.rankField(); field != "" {
		sortSpec = append(sortSpec, bson.E{Key: field, Value: -1})
	}
	sortSpec = append(sortSpec,
		bson.E{Key: "createdAt", Value: -1},
		bson.E{Key: "_id", Value: -1},
	)

	stages = append(stages,
		bson.D{{Key: "$sort", Value: sortSpec}},
		bson.D{{Key: "$skip", Value: skip}},
		bson.D{{Key: "$limit", Value: limit}},
	)

	switch o {
	case MostLiked:
		stages = append(stages, bson.D{{Key: "$project", Value: bson.D{{Key: "likesCount", Value: 0}}}})
	case MostCommented:
		stages = append(stages, bson.D{{Key: "$project", Value: bson.D{{Key: "commentsCount", Value: 0}}}})
	}
	return stages
}

func rankKey(o Order, p *models.Post) int {
	switch o {
	case MostLiked:
		return len(p.Likes)
	case MostCommented:
		return len(p.Comments)
	case MostShared:
		return p.Shares
	default:
		return 0
	}
}

// Less reports whether a ranks before b in order o
func Less(o Order, a, b *models.Post) bool {
	if ka, kb := rankKey(o, a), rankKey(o, b); ka != kb {
		return ka > kb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.Hex() > b.ID.Hex()
}

// Sort orders posts in place according to o
func Sort(posts []models.Post, o Order) {
	sort.SliceStable(posts, func(i, j int) bool {
		return Less(o, &posts[i], &posts[j])
	})
}

// Paginate returns the slice of already ordered posts covered by skip/limit
func Paginate(posts []models.Post, skip, limit int64) []models.Post {
	n := int64(len(posts))
	if skip < 0 {
		skip = 0
	}
	if skip >= n || limit <= 0 {
		return []models.Post{}
	}
	end := n
	if limit < n-skip {
		end = skip + limit
	}
	return posts[skip:end]
}
