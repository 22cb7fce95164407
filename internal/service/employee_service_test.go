package service

import (
	"context"
	"testing"
	"time"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeEmployeeRepo struct {
	byID map[uuid.UUID]*model.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{byID: map[uuid.UUID]*model.Employee{}}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *model.Employee) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	r.byID[e.ID] = &cp
	return nil
}

func (r *fakeEmployeeRepo) FindByCIN(_ context.Context, cin string) (*model.Employee, error) {
	for _, e := range r.byID {
		if e.CIN == cin {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEmployeeRepo) List(_ context.Context) ([]model.Employee, error) {
	out := make([]model.Employee, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.byID, id)
	return nil
}

func newEmployeeTestService() (EmployeeService, *fakeEmployeeRepo) {
	repo := newFakeEmployeeRepo()
	return NewEmployeeService(repo), repo
}

func TestComputeAge(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	require.Equal(t, 30, computeAge(time.Date(1996, 6, 15, 0, 0, 0, 0, time.UTC), now))
	require.Equal(t, 29, computeAge(time.Date(1996, 6, 16, 0, 0, 0, 0, time.UTC), now))
	require.Equal(t, 30, computeAge(time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), now))
}

func TestCreateEmployee(t *testing.T) {
	svc, repo := newEmployeeTestService()

	res, err := svc.CreateEmployee(context.Background(), CreateEmployeeRequest{
		FullName:     "Sara Bennis",
		CIN:          "AB123456",
		BirthDate:    "1995-04-20",
		JobCategory:  model.JobPastryChef,
		WeeklySalary: "1200",
	})
	require.NoError(t, err)
	require.Equal(t, "AB123456", res.CIN)
	require.Equal(t, computeAge(res.BirthDate, time.Now()), res.Age)
	require.False(t, res.HireDate.IsZero())
	require.Len(t, repo.byID, 1)
}

func TestCreateEmployeeValidation(t *testing.T) {
	svc, _ := newEmployeeTestService()

	cases := []CreateEmployeeRequest{
		{FullName: "X", CIN: "C1", BirthDate: "1990-01-01", JobCategory: "astronaut", WeeklySalary: "100"},
		{FullName: "X", CIN: "C2", BirthDate: "not-a-date", JobCategory: model.JobBaker, WeeklySalary: "100"},
		{FullName: "X", CIN: "C3", BirthDate: "1990-01-01", JobCategory: model.JobBaker, WeeklySalary: "-5"},
	}
	for _, req := range cases {
		_, err := svc.CreateEmployee(context.Background(), req)
		require.ErrorIs(t, err, apperr.ErrValidation)
	}
}

func TestCreateEmployeeDuplicateCIN(t *testing.T) {
	svc, _ := newEmployeeTestService()

	req := CreateEmployeeRequest{
		FullName:     "Sara Bennis",
		CIN:          "AB123456",
		BirthDate:    "1995-04-20",
		JobCategory:  model.JobBaker,
		WeeklySalary: "900",
	}
	_, err := svc.CreateEmployee(context.Background(), req)
	require.NoError(t, err)

	req.FullName = "Someone Else"
	_, err = svc.CreateEmployee(context.Background(), req)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeleteEmployee(t *testing.T) {
	svc, repo := newEmployeeTestService()

	res, err := svc.CreateEmployee(context.Background(), CreateEmployeeRequest{
		FullName:     "Sara Bennis",
		CIN:          "AB123456",
		BirthDate:    "1995-04-20",
		JobCategory:  model.JobManager,
		WeeklySalary: "1500",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEmployee(context.Background(), res.ID.String()))
	require.Empty(t, repo.byID)

	err = svc.DeleteEmployee(context.Background(), res.ID.String())
	require.ErrorIs(t, err, apperr.ErrNotFound)

	err = svc.DeleteEmployee(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, apperr.ErrValidation)
}
