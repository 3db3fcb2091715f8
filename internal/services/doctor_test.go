package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/db"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
)

func TestDoctorLifecycle(t *testing.T) {
	svc := NewDoctorService(db.NewMemoryStore(), zerolog.Nop())
	ctx := context.Background()

	id, err := svc.Add(ctx, &models.Doctor{Email: "doc@x.com", Name: "Dr. Who", Specialty: "Cleaning"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = svc.Add(ctx, &models.Doctor{Email: "doc@x.com", Name: "Dr. Again"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Add(ctx, &models.Doctor{Email: "x@x.com"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	doctors, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Dr. Who", doctors[0].Name)

	n, err := svc.Delete(ctx, "doc@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.Delete(ctx, "doc@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
