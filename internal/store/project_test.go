package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projectdomain "smartrfq/internal/project/domain"
)

func project(id string) projectdomain.Project {
	return projectdomain.Project{ID: id, Name: "Project " + id, Status: projectdomain.StatusDraft}
}

func TestProjectStore_CRUD(t *testing.T) {
	s := NewProjectStore()
	assert.False(t, s.Has(OrganizationKey))

	s.SetAll(OrganizationKey, []projectdomain.Project{project("p1"), project("p2")})
	s.Add(project("p3"))
	assert.Len(t, s.List(OrganizationKey), 3)

	n := s.Update("p2", func(p *projectdomain.Project) { p.Status = projectdomain.StatusOpen })
	assert.Equal(t, 1, n)
	assert.Equal(t, projectdomain.StatusOpen, s.List(OrganizationKey)[1].Status)

	assert.Equal(t, 1, s.Delete("p1"))
	assert.Len(t, s.List(OrganizationKey), 2)
}

func TestProjectStore_DeleteClearsSelection(t *testing.T) {
	s := NewProjectStore()
	s.SetAll(OrganizationKey, []projectdomain.Project{project("p1"), project("p2")})
	s.Select("p2")

	got, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "p2", got.ID)

	s.Delete("p2")
	_, ok = s.Selected()
	assert.False(t, ok)
	assert.Empty(t, s.State().SelectedID)
}

func TestProjectStore_ResetRestoresInitialState(t *testing.T) {
	s := NewProjectStore()
	s.SetAll(OrganizationKey, []projectdomain.Project{project("p1")})
	s.Select("p1")
	s.SetLoading(true)
	s.Reset()
	assert.Equal(t, InitialProjectState(), s.State())
}

func TestProjectStore_SnapshotExcludesMeta(t *testing.T) {
	s := NewProjectStore()
	s.SetAll(OrganizationKey, []projectdomain.Project{project("p1")})
	s.Select("p1")
	s.SetError("transient")

	data, err := s.Snapshot()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "transient")

	restored := NewProjectStore()
	require.NoError(t, restored.Restore(data))
	st := restored.State()
	assert.Equal(t, "p1", st.SelectedID)
	assert.Empty(t, st.Error)
	assert.Len(t, st.Projects[OrganizationKey], 1)
}

func TestProjectStore_StateIsACopy(t *testing.T) {
	s := NewProjectStore()
	s.SetAll(OrganizationKey, []projectdomain.Project{project("p1")})
	st := s.State()
	st.Projects[OrganizationKey][0].Name = "mutated"
	assert.Equal(t, "Project p1", s.List(OrganizationKey)[0].Name)
}
