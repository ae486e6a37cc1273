package service

import "context"

type testTxRepos struct {
	standards StandardRepositoryInterface
	sections  SectionRepositoryInterface
}

func (t *testTxRepos) Standards() StandardRepositoryInterface {
	return t.standards
}

func (t *testTxRepos) Sections() SectionRepositoryInterface {
	return t.sections
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	return fn(t.repos)
}
