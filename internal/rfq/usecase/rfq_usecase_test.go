package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	projectdomain "smartrfq/internal/project/domain"
	projectdto "smartrfq/internal/project/dto"
	projectrepo "smartrfq/internal/project/repository"
	projectusecase "smartrfq/internal/project/usecase"
	rfqdomain "smartrfq/internal/rfq/domain"
	rfqdto "smartrfq/internal/rfq/dto"
	"smartrfq/internal/rfq/repository"
	"smartrfq/pkg/apierr"
	"smartrfq/pkg/database"
	"smartrfq/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	uc      RFQUsecase
	project *projectdomain.Project
	files   *storage.Local
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&projectdomain.Project{}, &rfqdomain.Part{}, &rfqdomain.ItemCounter{}, &rfqdomain.File{}))

	projects := projectusecase.NewProjectUsecase(projectrepo.NewProjectRepository(db))
	p, err := projects.CreateProject("org_a", &projectdto.CreateProjectRequest{Name: "Gearbox"})
	require.NoError(t, err)

	local, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	uc := NewRFQUsecase(repository.NewPartRepository(db), repository.NewFileRepository(db), projects, local, nil)
	return &fixture{uc: uc, project: p, files: local}
}

func TestRFQUsecase_ItemNumbersAreSequential(t *testing.T) {
	f := newFixture(t)

	first, err := f.uc.CreateItem("org_a", f.project.ID, &rfqdto.CreateItemRequest{Name: "Shaft", Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ItemNumber)

	more, err := f.uc.CreateItems("org_a", f.project.ID, []rfqdto.CreateItemRequest{
		{Name: "Bearing", Quantity: 8},
		{Name: "Housing", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, more, 2)
	assert.Equal(t, 2, more[0].ItemNumber)
	assert.Equal(t, 3, more[1].ItemNumber)

	items, err := f.uc.ListItems("org_a", f.project.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Shaft", items[0].Name)

	byNumber, err := f.uc.ItemsByNumber("org_a", f.project.ID, []int{3, 9})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, "Housing", byNumber[3].Name)
}

func TestRFQUsecase_CreateRejectsInvalidBatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateItems("org_a", f.project.ID, []rfqdto.CreateItemRequest{
		{Name: "Ok", Quantity: 1},
		{Name: "  ", Quantity: 1},
	})
	assert.ErrorIs(t, err, apierr.ErrInvalid)

	items, err := f.uc.ListItems("org_a", f.project.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = f.uc.CreateItem("org_b", f.project.ID, &rfqdto.CreateItemRequest{Name: "x", Quantity: 1})
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestRFQUsecase_ImportCSV(t *testing.T) {
	f := newFixture(t)

	csv := strings.Join([]string{
		"Part Name,QTY,Material,Notes",
		"Flange,10,SS304,",
		"Spacer,abc,AL6061,",
		",,,",
		"Bolt,0,,M8",
		"Washer,200,,zinc",
	}, "\n")

	res, err := f.uc.ImportCSV("org_a", f.project.ID, strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Flange", res.Items[0].Name)
	assert.Equal(t, "SS304", res.Items[0].Material)
	assert.Equal(t, "pcs", res.Items[0].Unit)
	assert.Equal(t, "zinc", res.Items[1].Remarks)
	assert.Equal(t, 2, res.Items[1].ItemNumber)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Equal(t, 5, res.Errors[1].Row)
}

func TestRFQUsecase_ImportCSVRequiresColumns(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.ImportCSV("org_a", f.project.ID, strings.NewReader("name,material\nShaft,steel\n"))
	assert.ErrorIs(t, err, apierr.ErrInvalid)

	_, err = f.uc.ImportCSV("org_a", f.project.ID, strings.NewReader(""))
	assert.ErrorIs(t, err, apierr.ErrInvalid)
}

func TestRFQUsecase_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	items, err := f.uc.CreateItems("org_a", f.project.ID, []rfqdto.CreateItemRequest{
		{Name: "A", Quantity: 1}, {Name: "B", Quantity: 1}, {Name: "C", Quantity: 1},
	})
	require.NoError(t, err)

	qty := 25
	updated, err := f.uc.UpdateItem("org_a", items[0].ID, &rfqdomain.PartPatch{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 25, updated.Quantity)

	zero := 0
	_, err = f.uc.UpdateItem("org_a", items[0].ID, &rfqdomain.PartPatch{Quantity: &zero})
	assert.ErrorIs(t, err, apierr.ErrInvalid)

	assert.ErrorIs(t, f.uc.DeleteItem("org_b", items[0].ID), apierr.ErrNotFound)
	require.NoError(t, f.uc.DeleteItem("org_a", items[0].ID))

	n, err := f.uc.DeleteItems("org_a", []string{items[1].ID, items[2].ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRFQUsecase_ItemNumbersAreNotReused(t *testing.T) {
	f := newFixture(t)
	items, err := f.uc.CreateItems("org_a", f.project.ID, []rfqdto.CreateItemRequest{
		{Name: "A", Quantity: 1}, {Name: "B", Quantity: 1},
	})
	require.NoError(t, err)
	require.NoError(t, f.uc.DeleteItem("org_a", items[1].ID))

	next, err := f.uc.CreateItem("org_a", f.project.ID, &rfqdto.CreateItemRequest{Name: "C", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, next.ItemNumber)

	byNumber, err := f.uc.ItemsByNumber("org_a", f.project.ID, []int{2})
	require.NoError(t, err)
	assert.Empty(t, byNumber)
}

func TestRFQUsecase_FileLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	file, err := f.uc.UploadFile(ctx, "org_a", f.project.ID, Upload{
		Filename:    "drawing.pdf",
		ContentType: "application/pdf",
		Data:        strings.NewReader("%PDF-1.4"),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, rfqdomain.FileCompleted, file.Status)
	assert.Equal(t, int64(8), file.Size)
	assert.True(t, strings.HasPrefix(file.URL, "/uploads/"))

	onDisk := filepath.Join(f.files.Root(), filepath.FromSlash(file.StorageKey))
	_, err = os.Stat(onDisk)
	require.NoError(t, err)

	text := "Rev B"
	updated, err := f.uc.UpdateFile("org_a", file.ID, &rfqdomain.FilePatch{OCRText: &text})
	require.NoError(t, err)
	assert.True(t, updated.Parsed())

	files, err := f.uc.ListFiles("org_a", f.project.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)

	require.NoError(t, f.uc.DeleteFile(ctx, "org_a", file.ID))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, f.uc.DeleteFile(ctx, "org_a", file.ID), apierr.ErrNotFound)
}
