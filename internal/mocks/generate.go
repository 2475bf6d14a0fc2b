package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/gamesession --output domain/gamesession --outpkg gamesessionmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Provider --dir ../domain/livematch --output domain/livematch --outpkg livematchmock --filename provider_mock.go
