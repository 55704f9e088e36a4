// Package store - mutation operations. Every mutation returns a classified
// *apperrors.Error (one convention, no boolean results), writes through the
// document or identity service, and leaves local state untouched: the
// exposed lists change only when the subscription pushes the write back.
// File: store/mutations.go
package store

import (
	"context"
	"time"

	"athproof/apperrors"
	"athproof/docstore"
	"athproof/identity"
	"athproof/logger"
	"athproof/models"
	"athproof/services"
)

// seam for age validation in tests
var timeNow = time.Now

// ------------------- site content -------------------

// UpdateContent merges the given fields into the settings/siteContent
// document. Unspecified fields are preserved remote-side; the local content
// record updates when the document watch pushes the merged result back.
func (s *SiteStore) UpdateContent(ctx context.Context, fields map[string]any) error {
	if len(fields) == 0 {
		return apperrors.Validation("No content changes were provided.")
	}
	if err := s.docs.Set(ctx, CollectionSettings, DocSiteContent, fields, true); err != nil {
		logger.Error.Printf("[UpdateContent] Write rejected: %v", err)
		return apperrors.Wrap("Could not save site settings.", err)
	}
	return nil
}

// ------------------- athletes -------------------

// AddAthlete validates and writes a new registration record. The registration
// code and category are assigned here; the creation timestamp is assigned by
// the document service. There is no optimistic insert: a rejected write
// leaves the exposed athlete list unchanged.
func (s *SiteStore) AddAthlete(ctx context.Context, a models.Athlete) error {
	if a.FirstName == "" || a.LastName == "" {
		return apperrors.Validation("First and last name are required.")
	}
	if a.Photo == "" {
		return apperrors.Validation("Please upload a photo before registering.")
	}
	age := a.AgeAt(timeNow())
	if age < 0 {
		return apperrors.Validation("A valid date of birth is required (YYYY-MM-DD).")
	}
	if age < models.MinAge || age > models.MaxAge {
		return apperrors.Validation("Athlete age must be between 7 and 20.")
	}

	fields := map[string]any{
		"athleteId":   services.RegistrationCode(),
		"firstName":   a.FirstName,
		"middleName":  a.MiddleName,
		"lastName":    a.LastName,
		"dob":         a.DOB,
		"gender":      a.Gender,
		"sport":       a.Sport,
		"parentPhone": a.ParentPhone,
		"homeAddress": a.HomeAddress,
		"category":    services.CategoryFor(age),
		"photo":       a.Photo,
		"timestamp":   docstore.ServerTimestamp,
	}
	if _, err := s.docs.Add(ctx, CollectionAthletes, fields); err != nil {
		logger.Error.Printf("[AddAthlete] Write rejected: %v", err)
		return apperrors.Wrap("Could not create the athlete record.", err)
	}
	return nil
}

// UpdateAthlete merges edited fields into an existing registration record.
func (s *SiteStore) UpdateAthlete(ctx context.Context, id string, fields map[string]any) error {
	delete(fields, "id") // never write the identifier back into the document
	if err := s.docs.Update(ctx, CollectionAthletes, id, fields); err != nil {
		logger.Error.Printf("[UpdateAthlete] Write rejected for %s: %v", id, err)
		return apperrors.Wrap("Could not update the athlete record.", err)
	}
	return nil
}

// DeleteAthlete removes a registration record.
func (s *SiteStore) DeleteAthlete(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, CollectionAthletes, id); err != nil {
		logger.Error.Printf("[DeleteAthlete] Delete rejected for %s: %v", id, err)
		return apperrors.Wrap("Could not delete the athlete record.", err)
	}
	return nil
}

// ------------------- media -------------------

// AddBlogPost writes a new post. The slug derives from the title when blank.
func (s *SiteStore) AddBlogPost(ctx context.Context, p models.BlogPost) error {
	if p.Title == "" {
		return apperrors.Validation("A post title is required.")
	}
	if p.Slug == "" {
		p.Slug = services.Slugify(p.Title)
	}
	fields := map[string]any{
		"title":     p.Title,
		"slug":      p.Slug,
		"excerpt":   p.Excerpt,
		"body":      p.Body,
		"image":     p.Image,
		"timestamp": docstore.ServerTimestamp,
	}
	if _, err := s.docs.Add(ctx, CollectionBlogs, fields); err != nil {
		logger.Error.Printf("[AddBlogPost] Write rejected: %v", err)
		return apperrors.Wrap("Could not publish the post.", err)
	}
	return nil
}

// DeleteBlogPost removes a post.
func (s *SiteStore) DeleteBlogPost(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, CollectionBlogs, id); err != nil {
		return apperrors.Wrap("Could not delete the post.", err)
	}
	return nil
}

// AddGalleryImage writes a new gallery entry pointing at an uploaded image.
func (s *SiteStore) AddGalleryImage(ctx context.Context, g models.GalleryImage) error {
	if g.URL == "" {
		return apperrors.Validation("An image is required.")
	}
	fields := map[string]any{
		"url":       g.URL,
		"caption":   g.Caption,
		"timestamp": docstore.ServerTimestamp,
	}
	if _, err := s.docs.Add(ctx, CollectionGallery, fields); err != nil {
		return apperrors.Wrap("Could not add the image.", err)
	}
	return nil
}

// DeleteGalleryImage removes a gallery entry.
func (s *SiteStore) DeleteGalleryImage(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, CollectionGallery, id); err != nil {
		return apperrors.Wrap("Could not delete the image.", err)
	}
	return nil
}

// ------------------- auth pass-throughs -------------------

// Login authenticates against the identity service. Session state is not
// written here; the auth-change subscription is its sole writer, so the
// merged session record appears via that path.
func (s *SiteStore) Login(ctx context.Context, email, password string) (identity.Principal, error) {
	return s.auth.SignIn(ctx, email, password)
}

// Signup creates an identity account and writes its admin_users profile with
// the requested role and a creation timestamp.
func (s *SiteStore) Signup(ctx context.Context, email, password, role string) (identity.Principal, error) {
	principal, err := s.auth.CreateUser(ctx, email, password)
	if err != nil {
		return identity.Principal{}, err
	}
	profile := map[string]any{
		"email":     principal.Email,
		"role":      role,
		"createdAt": docstore.ServerTimestamp,
	}
	if err := s.docs.Set(ctx, CollectionAdminUsers, principal.UID, profile, false); err != nil {
		logger.Error.Printf("[Signup] Profile write rejected for uid=%s: %v", principal.UID, err)
		return identity.Principal{}, apperrors.Wrap("Account created but the profile could not be saved.", err)
	}
	return principal, nil
}

// Logout ends the session for the given uid.
func (s *SiteStore) Logout(uid string) {
	s.auth.SignOut(uid)
}

// ------------------- admin accounts -------------------

// ListAdminAccounts reads the provisioned accounts, newest last.
func (s *SiteStore) ListAdminAccounts(ctx context.Context) ([]models.AdminAccount, error) {
	docs, err := s.docs.List(ctx, CollectionAdminUsers)
	if err != nil {
		return nil, apperrors.Wrap("Could not load admin accounts.", err)
	}
	accounts := make([]models.AdminAccount, 0, len(docs))
	for _, doc := range docs {
		var acct models.AdminAccount
		if derr := doc.DataTo(&acct); derr != nil {
			logger.Error.Printf("[ListAdminAccounts] Decode failed for %s: %v", doc.ID, derr)
			continue
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// CreateAdminAccount provisions a dashboard account: an identity record with
// a generated temporary password plus an admin_users profile carrying the
// human-readable code, role and status. The temporary password is returned
// once for display and is never stored in plain text.
func (s *SiteStore) CreateAdminAccount(ctx context.Context, name, email, role string) (models.AdminAccount, string, error) {
	if name == "" || email == "" {
		return models.AdminAccount{}, "", apperrors.Validation("Name and email are required.")
	}

	existing, err := s.ListAdminAccounts(ctx)
	if err != nil {
		return models.AdminAccount{}, "", err
	}
	code := services.AdminCode(len(existing) + 1)
	tempPassword := services.TempPassword()

	principal, err := s.auth.CreateUser(ctx, email, tempPassword)
	if err != nil {
		return models.AdminAccount{}, "", apperrors.Wrap("Could not create the account.", err)
	}

	profile := map[string]any{
		"code":    code,
		"name":    name,
		"email":   principal.Email,
		"role":    role,
		"status":  "Active",
		"created": docstore.ServerTimestamp,
	}
	if err := s.docs.Set(ctx, CollectionAdminUsers, principal.UID, profile, false); err != nil {
		logger.Error.Printf("[CreateAdminAccount] Profile write rejected for uid=%s: %v", principal.UID, err)
		s.auth.SignOut(principal.UID)
		return models.AdminAccount{}, "", apperrors.Wrap("Account created but the profile could not be saved.", err)
	}

	// CreateUser signs the new principal in, but that session belongs to no
	// browser. Sign it out so the provisioned account only appears in the
	// session map once its owner actually logs in.
	s.auth.SignOut(principal.UID)

	acct := models.AdminAccount{
		ID:     principal.UID,
		Code:   code,
		Name:   name,
		Email:  principal.Email,
		Role:   role,
		Status: "Active",
	}
	logger.Info.Printf("[CreateAdminAccount] Provisioned %s (%s) as %s", name, code, role)
	return acct, tempPassword, nil
}

// SetAdminStatus toggles a provisioned account between Active and Inactive.
func (s *SiteStore) SetAdminStatus(ctx context.Context, id, status string) error {
	if status != "Active" && status != "Inactive" {
		return apperrors.Validation("Status must be Active or Inactive.")
	}
	if err := s.docs.Update(ctx, CollectionAdminUsers, id, map[string]any{"status": status}); err != nil {
		return apperrors.Wrap("Could not update the account status.", err)
	}
	return nil
}
