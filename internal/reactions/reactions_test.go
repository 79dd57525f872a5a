package reactions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/matnazarov/blog-api/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.CommentLike{},
	))

	return db
}

func seedPost(t *testing.T, db *gorm.DB) (userA, userB int, postID int) {
	t.Helper()

	a := models.User{Username: "alice", Email: "alice@example.com", Password: "x", IsActive: true}
	b := models.User{Username: "bob", Email: "bob@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	post := models.Post{UserID: a.ID, Name: "first", Title: "First post", Text: "hello", IsActive: true}
	require.NoError(t, db.Create(&post).Error)

	return a.ID, b.ID, post.ID
}

func TestToggle(t *testing.T) {
	db := openTestDB(t)
	userA, userB, postID := seedPost(t, db)

	t.Run("like then un-like round-trips to no reaction", func(t *testing.T) {
		liked, likes, dislikes, err := Toggle(db, userA, postID, true)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, int64(1), likes)
		assert.Equal(t, int64(0), dislikes)

		liked, likes, dislikes, err = Toggle(db, userA, postID, true)
		require.NoError(t, err)
		assert.False(t, liked)
		assert.Equal(t, int64(0), likes)
		assert.Equal(t, int64(0), dislikes)

		var rows int64
		require.NoError(t, db.Model(&models.Like{}).Where("user_id = ? AND post_id = ?", userA, postID).Count(&rows).Error)
		assert.Equal(t, int64(0), rows)
	})

	t.Run("opposite reaction flips in place", func(t *testing.T) {
		liked, likes, dislikes, err := Toggle(db, userA, postID, false)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, int64(0), likes)
		assert.Equal(t, int64(1), dislikes)

		// Still one row, flipped, not two
		var rows int64
		require.NoError(t, db.Model(&models.Like{}).Where("user_id = ? AND post_id = ?", userA, postID).Count(&rows).Error)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("second user reacts independently", func(t *testing.T) {
		liked, likes, dislikes, err := Toggle(db, userB, postID, true)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, int64(1), likes)
		assert.Equal(t, int64(1), dislikes)
	})

	t.Run("counts never exceed distinct reacting users", func(t *testing.T) {
		likes, dislikes, err := postCounts(db, postID)
		require.NoError(t, err)

		var users int64
		require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", postID).Distinct("user_id").Count(&users).Error)
		assert.LessOrEqual(t, likes+dislikes, users)
	})

	t.Run("unknown or inactive post is NotFound", func(t *testing.T) {
		_, _, _, err := Toggle(db, userA, 9999, true)
		assert.ErrorIs(t, err, ErrPostNotFound)

		hidden := models.Post{UserID: userA, Name: "h", Title: "H", Text: "x", IsActive: false}
		require.NoError(t, db.Create(&hidden).Error)

		_, _, _, err = Toggle(db, userA, hidden.ID, true)
		assert.ErrorIs(t, err, ErrPostNotFound)
	})
}

func TestPostStats(t *testing.T) {
	db := openTestDB(t)
	userA, userB, postID := seedPost(t, db)

	_, _, _, err := Toggle(db, userA, postID, true)
	require.NoError(t, err)
	_, _, _, err = Toggle(db, userB, postID, false)
	require.NoError(t, err)

	t.Run("anonymous requester has nil user_liked", func(t *testing.T) {
		stats, err := PostStats(db, postID, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.LikesCount)
		assert.Equal(t, int64(1), stats.DislikesCount)
		assert.Nil(t, stats.UserLiked)
	})

	t.Run("requester sees own reaction", func(t *testing.T) {
		stats, err := PostStats(db, postID, &userA)
		require.NoError(t, err)
		require.NotNil(t, stats.UserLiked)
		assert.True(t, *stats.UserLiked)

		stats, err = PostStats(db, postID, &userB)
		require.NoError(t, err)
		require.NotNil(t, stats.UserLiked)
		assert.False(t, *stats.UserLiked)
	})

	t.Run("user with no reaction has nil user_liked", func(t *testing.T) {
		carol := models.User{Username: "carol", Email: "carol@example.com", Password: "x", IsActive: true}
		require.NoError(t, db.Create(&carol).Error)

		stats, err := PostStats(db, postID, &carol.ID)
		require.NoError(t, err)
		assert.Nil(t, stats.UserLiked)
	})

	t.Run("stats never mutate", func(t *testing.T) {
		var before int64
		require.NoError(t, db.Model(&models.Like{}).Count(&before).Error)

		_, err := PostStats(db, postID, &userA)
		require.NoError(t, err)

		var after int64
		require.NoError(t, db.Model(&models.Like{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})
}

func TestToggleComment(t *testing.T) {
	db := openTestDB(t)
	userA, userB, postID := seedPost(t, db)

	comment := models.Comment{UserID: userA, PostID: postID, Comment: "nice", IsActive: true}
	require.NoError(t, db.Create(&comment).Error)

	t.Run("comment reactions live in their own namespace", func(t *testing.T) {
		// A like on the post must not leak into the comment counts
		_, _, _, err := Toggle(db, userB, postID, true)
		require.NoError(t, err)

		liked, likes, dislikes, err := ToggleComment(db, userB, comment.ID, true)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, int64(1), likes)
		assert.Equal(t, int64(0), dislikes)
	})

	t.Run("same reaction removes, opposite flips", func(t *testing.T) {
		liked, likes, _, err := ToggleComment(db, userB, comment.ID, true)
		require.NoError(t, err)
		assert.False(t, liked)
		assert.Equal(t, int64(0), likes)

		liked, _, dislikes, err := ToggleComment(db, userB, comment.ID, false)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, int64(1), dislikes)
	})

	t.Run("unknown comment is NotFound", func(t *testing.T) {
		_, _, _, err := ToggleComment(db, userA, 9999, true)
		assert.ErrorIs(t, err, ErrCommentNotFound)
	})
}

func TestCommentStats(t *testing.T) {
	db := openTestDB(t)
	userA, userB, postID := seedPost(t, db)

	comment := models.Comment{UserID: userA, PostID: postID, Comment: "nice", IsActive: true}
	require.NoError(t, db.Create(&comment).Error)

	_, _, _, err := ToggleComment(db, userB, comment.ID, true)
	require.NoError(t, err)

	stats, err := CommentStats(db, comment.ID, &userB)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.LikesCount)
	assert.Equal(t, int64(0), stats.DislikesCount)
	require.NotNil(t, stats.UserLiked)
	assert.True(t, *stats.UserLiked)
}
