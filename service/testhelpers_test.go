package service

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

type serviceMocks struct {
	factory      *MockUnitOfWorkFactory
	uow          *MockUnitOfWork
	users        *MockUserRepository
	seasons      *MockSeasonRepository
	transactions *MockTransactionRepository
	questions    *MockQuestionRepository
	votes        *MockVoteRepository
	publisher    *MockEventPublisher
}

// newServiceMocks wires one mock unit of work that every Create call returns.
// Begin and Rollback are always allowed; Commit is left to each test.
func newServiceMocks() *serviceMocks {
	m := &serviceMocks{
		factory:      new(MockUnitOfWorkFactory),
		uow:          new(MockUnitOfWork),
		users:        new(MockUserRepository),
		seasons:      new(MockSeasonRepository),
		transactions: new(MockTransactionRepository),
		questions:    new(MockQuestionRepository),
		votes:        new(MockVoteRepository),
		publisher:    new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.users, m.seasons, m.transactions, m.questions, m.votes, m.publisher)
	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", mock.Anything).Return(nil)
	m.uow.On("Rollback").Return(nil)
	return m
}

func (m *serviceMocks) assertExpectations(t *testing.T) {
	t.Helper()
	m.users.AssertExpectations(t)
	m.seasons.AssertExpectations(t)
	m.transactions.AssertExpectations(t)
	m.questions.AssertExpectations(t)
	m.votes.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
	m.uow.AssertExpectations(t)
}
