package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateService_ParsesPrice(t *testing.T) {
	svc := NewCatalogService(newFakeServiceRepo())

	resp, err := svc.CreateService(context.Background(), CreateServiceDTO{
		Name:     "Software Development",
		Category: "engineering",
		Price:    "1499.50",
	})
	require.NoError(t, err)
	require.Equal(t, "Software Development", resp.Name)
	require.Equal(t, "1499.50", resp.Price)
}

func TestCreateService_DefaultsPriceToZero(t *testing.T) {
	svc := NewCatalogService(newFakeServiceRepo())

	resp, err := svc.CreateService(context.Background(), CreateServiceDTO{Name: "Mentorship"})
	require.NoError(t, err)
	require.Equal(t, "0.00", resp.Price)
}

func TestCreateService_RejectsBadPrice(t *testing.T) {
	svc := NewCatalogService(newFakeServiceRepo())

	_, err := svc.CreateService(context.Background(), CreateServiceDTO{Name: "Mentorship", Price: "free"})
	require.Error(t, err)

	_, err = svc.CreateService(context.Background(), CreateServiceDTO{Name: "Mentorship", Price: "-5"})
	require.Error(t, err)
}

func TestCreateService_DuplicateName(t *testing.T) {
	svc := NewCatalogService(newFakeServiceRepo())

	_, err := svc.CreateService(context.Background(), CreateServiceDTO{Name: "Mentorship"})
	require.NoError(t, err)

	_, err = svc.CreateService(context.Background(), CreateServiceDTO{Name: "Mentorship"})
	require.ErrorIs(t, err, ErrExists)
}

func TestListServices(t *testing.T) {
	repo := newFakeServiceRepo()
	svc := NewCatalogService(repo)

	_, err := svc.CreateService(context.Background(), CreateServiceDTO{Name: "Mentorship"})
	require.NoError(t, err)
	_, err = svc.CreateService(context.Background(), CreateServiceDTO{Name: "Consulting"})
	require.NoError(t, err)

	services, err := svc.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
}
