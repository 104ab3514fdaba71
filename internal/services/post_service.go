package services

import (
	"context"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/dto"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/identity"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/policy"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/store"
	"github.com/google/uuid"
)

// PostQuery selects a page of posts, optionally by title fragment or author.
type PostQuery struct {
	Title  string
	Author string
	Page   Page
}

type PostService struct {
	store store.PostStore
	now   func() time.Time
}

func NewPostService(s store.PostStore) *PostService {
	return &PostService{store: s, now: time.Now}
}

func (s *PostService) List(ctx context.Context, q PostQuery) (*dto.PostListResponse, error) {
	page := NewPage(q.Page.Number, q.Page.Limit)
	posts, total, err := s.store.ListPosts(ctx, store.PostFilter{
		Title:  strings.TrimSpace(q.Title),
		Author: q.Author,
		Offset: page.Offset(),
		Limit:  page.Limit,
	})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return &dto.PostListResponse{
		Posts:      posts,
		Page:       page.Number,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: page.TotalPages(total),
	}, nil
}

func (s *PostService) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.store.GetPost(ctx, id)
}

// Detail returns the post together with what p may do with it.
func (s *PostService) Detail(ctx context.Context, p *identity.Principal, id uuid.UUID) (*dto.PostDetailResponse, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PostDetailResponse{Post: *post, Permissions: policy.For(p, post)}, nil
}

// Create stores a new post owned by p. The author is always the caller's
// email, whatever the request says.
func (s *PostService) Create(ctx context.Context, p *identity.Principal, req *dto.PostRequest) (*models.Post, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	req.Normalize()
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	post := &models.Post{
		Category: strings.TrimSpace(req.Category),
		Title:    strings.TrimSpace(req.Title),
		Cover:    strings.TrimSpace(req.Cover),
		ReadTime: models.ReadTime{Value: req.ReadTime.Value, Unit: req.ReadTime.Unit},
		Author:   p.Email,
		Content:  req.Content,
		Comments: []models.Comment{},
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, p *identity.Principal, id uuid.UUID, req *dto.UpdatePostRequest) (*models.Post, error) {
	req.Normalize()
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.authorized(ctx, policy.ActionEditPost, p, id); err != nil {
		return nil, err
	}

	changes := store.PostChanges{
		Category: req.Category,
		Title:    req.Title,
		Cover:    req.Cover,
		Content:  req.Content,
	}
	if req.ReadTime != nil {
		changes.ReadTime = &models.ReadTime{Value: req.ReadTime.Value, Unit: req.ReadTime.Unit}
	}
	return s.store.UpdatePost(ctx, id, changes)
}

// CheckEdit reports whether p may edit the post without changing it.
func (s *PostService) CheckEdit(ctx context.Context, p *identity.Principal, id uuid.UUID) error {
	_, err := s.authorized(ctx, policy.ActionEditPost, p, id)
	return err
}

func (s *PostService) SetCover(ctx context.Context, p *identity.Principal, id uuid.UUID, cover string) (*models.Post, error) {
	if _, err := s.authorized(ctx, policy.ActionEditPost, p, id); err != nil {
		return nil, err
	}
	return s.store.UpdatePost(ctx, id, store.PostChanges{Cover: &cover})
}

func (s *PostService) Delete(ctx context.Context, p *identity.Principal, id uuid.UUID) error {
	if _, err := s.authorized(ctx, policy.ActionDeletePost, p, id); err != nil {
		return err
	}
	return s.store.DeletePost(ctx, id)
}

func (s *PostService) Comments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

func (s *PostService) Comment(ctx context.Context, postID, commentID uuid.UUID) (*models.Comment, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	i := post.FindComment(commentID)
	if i < 0 {
		return nil, store.ErrCommentNotFound
	}
	return &post.Comments[i], nil
}

// AddComment appends a comment by p to the end of the post's comment list.
func (s *PostService) AddComment(ctx context.Context, p *identity.Principal, displayName string, postID uuid.UUID, req *dto.CommentRequest) (*models.Comment, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.authorized(ctx, policy.ActionAddComment, p, postID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	comment := models.Comment{
		ID:        uuid.New(),
		Name:      firstNonEmpty(req.Name, displayName, p.Email),
		Email:     p.Email,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.store.AppendComment(ctx, postID, comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *PostService) UpdateComment(ctx context.Context, p *identity.Principal, postID, commentID uuid.UUID, req *dto.UpdateCommentRequest) (*models.Comment, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	i := post.FindComment(commentID)
	if i < 0 {
		return nil, store.ErrCommentNotFound
	}
	if err := policy.AuthorizeComment(policy.ActionEditComment, p, post, &post.Comments[i]); err != nil {
		return nil, err
	}
	return s.store.UpdateComment(ctx, postID, commentID, req.Content, s.now().UTC())
}

// DeleteComment removes a comment. Only the post author may do this.
func (s *PostService) DeleteComment(ctx context.Context, p *identity.Principal, postID, commentID uuid.UUID) error {
	if _, err := s.authorized(ctx, policy.ActionDeleteComment, p, postID); err != nil {
		return err
	}
	return s.store.RemoveComment(ctx, postID, commentID)
}

// authorized loads the post and applies the ownership policy. Anonymous
// callers are rejected before the lookup so they cannot probe for posts.
func (s *PostService) authorized(ctx context.Context, action policy.Action, p *identity.Principal, id uuid.UUID) (*models.Post, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(action, p, post); err != nil {
		return nil, err
	}
	return post, nil
}
