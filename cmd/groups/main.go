package main

import (
	"evshare/internal/groups/handler"
	"evshare/internal/groups/repository"
	"evshare/internal/groups/service"
	"evshare/internal/groups/validator"
	"evshare/pkg/app"
	"evshare/pkg/config"
)

const ServiceName = "groups"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Groups service")

	groupService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewGroupHandler(groupService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.GroupService {
	groupValidator := validator.NewGroupValidator(cfg.Log)
	groupRepo := repository.NewMongoGroupRepository(cfg)
	voteRepo := repository.NewMongoVoteRepository(cfg)

	groupService := service.NewGroupService(groupRepo, voteRepo, groupValidator, cfg)

	cfg.Log.Info("Group service initialized", "database", cfg.MongoDatabaseName)
	return groupService
}
