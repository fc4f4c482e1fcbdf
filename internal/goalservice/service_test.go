package goalservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-finance/internal/accountdelivery"
	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/test"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
	"github.com/go-petr/pet-finance/pkg/randompkg"
)

func TestCreate(t *testing.T) {
	ownerID := randompkg.UserID()
	account := test.RandomAccount(ownerID)

	valid := domain.CreateGoalParams{
		OwnerID:      ownerID,
		Name:         "Emergency fund",
		TargetAmount: moneypkg.MustParse("5000.00"),
		TargetDate:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	withAccount := valid
	withAccount.AccountID = uuid.NullUUID{UUID: account.ID, Valid: true}

	testCases := []struct {
		name       string
		arg        func() domain.CreateGoalParams
		buildStubs func(repo *MockRepo, accountService *accountdelivery.MockService)
		wantErr    error
	}{
		{
			name: "WithoutAccount",
			arg:  func() domain.CreateGoalParams { return valid },
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				accountService.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().Create(gomock.Any(), gomock.Eq(valid)).Times(1).Return(domain.SavingsGoal{}, nil)
			},
		},
		{
			name: "WithAccount",
			arg:  func() domain.CreateGoalParams { return withAccount },
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				accountService.EXPECT().Get(gomock.Any(), gomock.Eq(ownerID), gomock.Eq(account.ID)).Times(1).Return(account, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Eq(withAccount)).Times(1).Return(domain.SavingsGoal{}, nil)
			},
		},
		{
			name: "ForeignAccount",
			arg:  func() domain.CreateGoalParams { return withAccount },
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				accountService.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "ZeroTarget",
			arg: func() domain.CreateGoalParams {
				arg := valid
				arg.TargetAmount = 0
				return arg
			},
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "NoTargetDate",
			arg: func() domain.CreateGoalParams {
				arg := valid
				arg.TargetDate = time.Time{}
				return arg
			},
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: ErrTargetDateRequired,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			accountService := accountdelivery.NewMockService(ctrl)
			tc.buildStubs(repo, accountService)

			_, err := New(repo, accountService).Create(context.Background(), tc.arg())
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestUpdate(t *testing.T) {
	ownerID := randompkg.UserID()
	goal := test.RandomGoal(ownerID)

	completed := domain.GoalStatusCompleted
	unknown := domain.GoalStatus("PAUSED")
	negative := moneypkg.MustParse("-1.00")

	testCases := []struct {
		name       string
		arg        domain.UpdateGoalParams
		buildStubs func(repo *MockRepo)
		wantErr    error
	}{
		{
			name: "Complete",
			arg:  domain.UpdateGoalParams{Status: &completed},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Update(gomock.Any(), gomock.Eq(ownerID), gomock.Eq(goal.ID), gomock.Eq(domain.UpdateGoalParams{Status: &completed})).
					Times(1).
					Return(goal, nil)
			},
		},
		{
			name: "UnknownStatus",
			arg:  domain.UpdateGoalParams{Status: &unknown},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: ErrInvalidGoalStatus,
		},
		{
			name: "NegativeTarget",
			arg:  domain.UpdateGoalParams{TargetAmount: &negative},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			_, err := New(repo, accountdelivery.NewMockService(ctrl)).Update(context.Background(), ownerID, goal.ID, tc.arg)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestContribute(t *testing.T) {
	ownerID := randompkg.UserID()
	account := test.RandomAccount(ownerID)
	goal := test.RandomGoal(ownerID)

	arg := domain.ContributeParams{
		OwnerID:   ownerID,
		GoalID:    goal.ID,
		AccountID: account.ID,
		Amount:    moneypkg.MustParse("250.00"),
	}

	testCases := []struct {
		name       string
		arg        domain.ContributeParams
		buildStubs func(repo *MockRepo)
		wantErr    error
	}{
		{
			name: "OK",
			arg:  arg,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Contribute(gomock.Any(), gomock.Eq(arg)).Times(1).Return(domain.ContributeResult{Goal: goal}, nil)
			},
		},
		{
			name: "ZeroAmount",
			arg: domain.ContributeParams{
				OwnerID:   ownerID,
				GoalID:    goal.ID,
				AccountID: account.ID,
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Contribute(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "GoalNotActive",
			arg:  arg,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Contribute(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.ContributeResult{}, domain.ErrGoalNotActive)
			},
			wantErr: domain.ErrGoalNotActive,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			_, err := New(repo, accountdelivery.NewMockService(ctrl)).Contribute(context.Background(), tc.arg)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
