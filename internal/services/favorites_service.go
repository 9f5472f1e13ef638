package services

import "reloved/internal/repos"

type FavoritesService struct {
	Repo *repos.FavoritesRepo
}

func NewFavoritesService(r *repos.FavoritesRepo) *FavoritesService { return &FavoritesService{Repo: r} }

func (s *FavoritesService) Save(sessionID, offerID string) error {
	return s.Repo.Add(sessionID, offerID)
}

func (s *FavoritesService) Unsave(sessionID, offerID string) error {
	return s.Repo.Remove(sessionID, offerID)
}

func (s *FavoritesService) List(sessionID string) ([]repos.FavoriteRow, error) {
	return s.Repo.List(sessionID)
}
