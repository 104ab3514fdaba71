package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/identity"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/store"
	"github.com/google/uuid"
)

type postFixture struct {
	auth  *AuthService
	posts *PostService
	owner *identity.Principal
	other *identity.Principal
	post  *models.Post
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	auth, db := newTestAuth(t)
	posts := NewPostService(store.NewGormPostStore(db))
	owner := principalOf(registerAuthor(t, auth, "owner@example.com"))
	other := principalOf(registerAuthor(t, auth, "other@example.com"))

	post, err := posts.Create(context.Background(), owner, &dto.PostRequest{
		Category: "go",
		Title:    "Embedded comments",
		Cover:    "https://example.com/cover.png",
		ReadTime: dto.ReadTime{Value: 5},
		Content:  "<p>hello</p>",
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return &postFixture{auth: auth, posts: posts, owner: owner, other: other, post: post}
}

func TestCreatePostForcesAuthor(t *testing.T) {
	f := newPostFixture(t)
	if f.post.Author != "owner@example.com" {
		t.Fatalf("author %q", f.post.Author)
	}
	if f.post.ReadTime.Unit != "minutes" {
		t.Fatalf("read time unit defaulted to %q", f.post.ReadTime.Unit)
	}

	_, err := f.posts.Create(context.Background(), nil, &dto.PostRequest{Title: "x"})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous create: %v", err)
	}
	_, err = f.posts.Create(context.Background(), f.owner, &dto.PostRequest{Title: "missing fields"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("invalid create: %v", err)
	}
}

func TestUpdateAndDeletePostOwnership(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	title := "Edited"

	if _, err := f.posts.Update(ctx, f.other, f.post.ID, &dto.UpdatePostRequest{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner update: %v", err)
	}
	if _, err := f.posts.Update(ctx, nil, f.post.ID, &dto.UpdatePostRequest{Title: &title}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous update: %v", err)
	}
	updated, err := f.posts.Update(ctx, f.owner, f.post.ID, &dto.UpdatePostRequest{Title: &title})
	if err != nil || updated.Title != "Edited" {
		t.Fatalf("owner update: %v %+v", err, updated)
	}

	if err := f.posts.Delete(ctx, f.other, f.post.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner delete: %v", err)
	}
	if err := f.posts.Delete(ctx, f.owner, f.post.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := f.posts.Get(ctx, f.post.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted post still readable: %v", err)
	}
}

func TestUpdatePostTrimsFields(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	blank := "   "
	if _, err := f.posts.Update(ctx, f.owner, f.post.ID, &dto.UpdatePostRequest{Title: &blank}); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank title: %v", err)
	}
	blankContent := " \n "
	if _, err := f.posts.Update(ctx, f.owner, f.post.ID, &dto.UpdatePostRequest{Content: &blankContent}); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank content: %v", err)
	}

	padded, category := "  Padded  ", " tech "
	updated, err := f.posts.Update(ctx, f.owner, f.post.ID, &dto.UpdatePostRequest{Title: &padded, Category: &category})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Padded" || updated.Category != "tech" {
		t.Fatalf("not trimmed: %q %q", updated.Title, updated.Category)
	}
}

func TestCommentLifecycle(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	// Any signed-in author may comment, including the post author.
	first, err := f.posts.AddComment(ctx, f.other, "Other Person", f.post.ID, &dto.CommentRequest{Content: "first"})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if first.Email != "other@example.com" || first.Name != "Other Person" {
		t.Fatalf("comment identity: %+v", first)
	}
	second, err := f.posts.AddComment(ctx, f.owner, "", f.post.ID, &dto.CommentRequest{Name: "Owner", Content: "second"})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	comments, err := f.posts.Comments(ctx, f.post.ID)
	if err != nil || len(comments) != 2 {
		t.Fatalf("comments: %v %d", err, len(comments))
	}
	if comments[0].ID != first.ID || comments[1].ID != second.ID {
		t.Fatalf("comments out of order")
	}

	if _, err := f.posts.AddComment(ctx, nil, "", f.post.ID, &dto.CommentRequest{Content: "anon"}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous comment: %v", err)
	}
	if _, err := f.posts.AddComment(ctx, f.other, "", uuid.New(), &dto.CommentRequest{Content: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("comment on missing post: %v", err)
	}

	// The commenter may not delete, even their own comment.
	if err := f.posts.DeleteComment(ctx, f.other, f.post.ID, first.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("commenter delete: %v", err)
	}
	if err := f.posts.DeleteComment(ctx, f.owner, f.post.ID, first.ID); err != nil {
		t.Fatalf("owner delete comment: %v", err)
	}
	if err := f.posts.DeleteComment(ctx, f.owner, f.post.ID, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}

	comments, _ = f.posts.Comments(ctx, f.post.ID)
	if len(comments) != 1 || comments[0].ID != second.ID {
		t.Fatalf("remaining comments: %+v", comments)
	}
}

func TestUpdateCommentPermissions(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	third := principalOf(registerAuthor(t, f.auth, "third@example.com"))

	c, err := f.posts.AddComment(ctx, f.other, "", f.post.ID, &dto.CommentRequest{Content: "original"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := f.posts.UpdateComment(ctx, third, f.post.ID, c.ID, &dto.UpdateCommentRequest{Content: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger edit: %v", err)
	}
	edited, err := f.posts.UpdateComment(ctx, f.other, f.post.ID, c.ID, &dto.UpdateCommentRequest{Content: "by commenter"})
	if err != nil || edited.Content != "by commenter" {
		t.Fatalf("commenter edit: %v %+v", err, edited)
	}
	edited, err = f.posts.UpdateComment(ctx, f.owner, f.post.ID, c.ID, &dto.UpdateCommentRequest{Content: "by owner"})
	if err != nil || edited.Content != "by owner" {
		t.Fatalf("owner edit: %v %+v", err, edited)
	}

	got, err := f.posts.Comment(ctx, f.post.ID, c.ID)
	if err != nil || got.Content != "by owner" {
		t.Fatalf("comment: %v %+v", err, got)
	}
}

func TestDetailPermissions(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	anon, err := f.posts.Detail(ctx, nil, f.post.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if !anon.Permissions.Read || anon.Permissions.Edit || anon.Permissions.AddComment {
		t.Fatalf("anonymous permissions: %+v", anon.Permissions)
	}

	owner, _ := f.posts.Detail(ctx, f.owner, f.post.ID)
	if !owner.Permissions.Edit || !owner.Permissions.Delete || !owner.Permissions.DeleteComments {
		t.Fatalf("owner permissions: %+v", owner.Permissions)
	}

	other, _ := f.posts.Detail(ctx, f.other, f.post.ID)
	if other.Permissions.Edit || !other.Permissions.AddComment {
		t.Fatalf("other permissions: %+v", other.Permissions)
	}
}

func TestListPostsSearchAndPaging(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	for _, title := range []string{"Go channels", "Rust lifetimes", "GO generics"} {
		if _, err := f.posts.Create(ctx, f.other, &dto.PostRequest{
			Category: "lang", Title: title, Cover: "c", ReadTime: dto.ReadTime{Value: 1, Unit: "minutes"}, Content: "x",
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	resp, err := f.posts.List(ctx, PostQuery{Title: "go", Page: NewPage(1, 10)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("title search matched %d posts", resp.Total)
	}

	resp, _ = f.posts.List(ctx, PostQuery{Page: NewPage(2, 3)})
	if resp.Total != 4 || len(resp.Posts) != 1 || resp.TotalPages != 2 {
		t.Fatalf("page 2: total=%d len=%d pages=%d", resp.Total, len(resp.Posts), resp.TotalPages)
	}

	resp, _ = f.posts.List(ctx, PostQuery{Author: "owner@example.com", Page: NewPage(1, 10)})
	if resp.Total != 1 {
		t.Fatalf("author filter matched %d", resp.Total)
	}
}

func TestNewPageClamps(t *testing.T) {
	cases := []struct {
		number, limit int
		want          Page
	}{
		{0, 0, Page{1, DefaultPageLimit}},
		{-3, 500, Page{1, MaxPageLimit}},
		{4, 25, Page{4, 25}},
		{math.MaxInt, 100, Page{MaxPageNumber, 100}},
	}
	for _, tc := range cases {
		if got := NewPage(tc.number, tc.limit); got != tc.want {
			t.Fatalf("NewPage(%d, %d) = %+v, want %+v", tc.number, tc.limit, got, tc.want)
		}
	}
	if got := NewPage(3, 10).Offset(); got != 20 {
		t.Fatalf("offset %d", got)
	}
	if got := NewPage(1, 10).TotalPages(21); got != 3 {
		t.Fatalf("total pages %d", got)
	}
	if got := NewPage(math.MaxInt, MaxPageLimit).Offset(); got <= 0 {
		t.Fatalf("huge page offset %d", got)
	}
}
