package usecase

import (
	"watch-list/internal/data/repository"
	"watch-list/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth         AuthService
	User         UserService
	Movie        MovieService
	TV           TVService
	Actor        ActorService
	Search       SearchService
	Review       ReviewService
	Import       ImportService
	Image        ImageService
	OperationLog OperationLogService
	Stats        StatsService
}

func NewService(repo *repository.Repository, config *utils.Config, jwt *utils.JWTManager, deps Deps, log *zap.Logger) *Service {
	oplog := NewOperationLogService(repo.OperationLog, log)
	images := NewImageService(repo, deps, oplog, log)

	return &Service{
		Auth:         NewAuthService(repo.User, jwt, oplog, log),
		User:         NewUserService(repo.User, oplog, log),
		Movie:        NewMovieService(repo, images, oplog, log),
		TV:           NewTVService(repo, images, oplog, log),
		Actor:        NewActorService(repo, deps.TMDb, images, oplog, log),
		Search:       NewSearchService(repo, log),
		Review:       NewReviewService(repo, oplog, log),
		Import:       NewImportService(repo, deps.TMDb, images, oplog, config.TMDb.CastLimit, log),
		Image:        images,
		OperationLog: oplog,
		Stats:        NewStatsService(repo.Stats, log),
	}
}
