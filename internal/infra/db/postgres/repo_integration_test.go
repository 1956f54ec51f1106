package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/medinsight/internal/domain/medicines"
	"github.com/bryanwahyu/medinsight/internal/domain/persons"
	"github.com/bryanwahyu/medinsight/internal/domain/reports"
)

// TEST_POSTGRES_DSN="host=localhost user=postgres password=pw dbname=medinsight_test sslmode=disable"
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	db, err := Connect(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range Schema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func TestReportRoundTrip(t *testing.T) {
	repo := NewReportRepository(openTestDB(t))
	ctx := context.Background()
	user := "user-" + uuid.NewString()

	r := &reports.MedicalReport{
		ID:       reports.ReportID(uuid.NewString()),
		UserID:   &user,
		FileName: "ecg.pdf",
		FileType: "application/pdf",
		Analysis: &reports.StructuredAnalysis{
			Summary: "s", NormalResults: []string{}, NeedsAttention: []string{"QT"},
			Explanation: "e", ReportType: "ECG",
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Save(ctx, r))

	got, err := repo.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Analysis, got.Analysis)
	assert.Nil(t, got.ExtractedText)

	_, err = repo.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, reports.ErrNotFound)
}

func TestMedicineFindByNameCaseInsensitive(t *testing.T) {
	repo := NewMedicineRepository(openTestDB(t))
	ctx := context.Background()
	name := "Pgamol-" + uuid.NewString()[:8]

	require.NoError(t, repo.Save(ctx, &medicines.MedicineSearch{
		ID:           medicines.SearchID(uuid.NewString()),
		MedicineName: name,
		SearchResult: &medicines.MedicineInfo{MedicineName: name},
		CreatedAt:    time.Now().UTC(),
	}))

	got, err := repo.FindByName(ctx, " "+name+" ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, name, got.SearchResult.MedicineName)
}

func TestUsageCounterReturning(t *testing.T) {
	c := NewUsageCounter(openTestDB(t))
	ctx := context.Background()
	key := "user:" + uuid.NewString()

	for want := 1; want <= 2; want++ {
		n, err := c.Increment(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	n, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, c.Decrement(ctx, key))
	require.NoError(t, c.Decrement(ctx, key))
	require.NoError(t, c.Decrement(ctx, key))
	n, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPersonUpdate(t *testing.T) {
	repo := NewPersonRepository(openTestDB(t))
	ctx := context.Background()
	p := &persons.Person{ID: uuid.NewString(), UserID: "owner", Name: "Ana"}
	require.NoError(t, repo.Create(ctx, p))

	w := 60.5
	p.Weight = &w
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.Get(ctx, "owner", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 60.5, *got.Weight)

	stranger := *p
	stranger.UserID = "someone"
	assert.ErrorIs(t, repo.Update(ctx, &stranger), persons.ErrNotFound)
}
