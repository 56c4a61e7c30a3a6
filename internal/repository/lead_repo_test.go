package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/questline-backend/internal/domain"
)

func setupLeadForm(t *testing.T) (LeadRepository, int64) {
	t.Helper()
	db := NewDB()
	forums := NewForumRepository(db)
	forum, err := forums.Create(&domain.Forum{Name: "F", Slug: "f"})
	require.NoError(t, err)
	repo := NewLeadRepository(db)
	form, err := repo.CreateForm(&domain.LeadCaptureForm{ForumID: forum.ID, Name: "Newsletter", IsActive: true})
	require.NoError(t, err)
	return repo, form.ID
}

func TestConversionRate_ZeroViews(t *testing.T) {
	repo, formID := setupLeadForm(t)

	rate, err := repo.ConversionRate(formID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rate)
}

func TestConversionRate_SubmissionsOverViews(t *testing.T) {
	repo, formID := setupLeadForm(t)

	for i := 0; i < 4; i++ {
		_, err := repo.RecordView(formID, i == 0)
		require.NoError(t, err)
	}
	_, err := repo.AddSubmission(&domain.LeadSubmission{FormID: formID, Email: "a@example.com"})
	require.NoError(t, err)

	rate, err := repo.ConversionRate(formID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, rate)
}

func TestSubmission_PayloadRoundTrip(t *testing.T) {
	repo, formID := setupLeadForm(t)

	payload := []byte(`{"company":"Acme","size":"11-50"}`)
	sub, err := repo.AddSubmission(&domain.LeadSubmission{
		FormID: formID, Email: "b@example.com", Payload: payload,
	})
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(sub.Payload))
}
