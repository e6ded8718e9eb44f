package spotify

import (
	"context"
	"fmt"

	"github.com/justestif/go-mood-music-player/internal/mood"
)

// UserProfile returns the normalized profile of the token's owner.
func (c *Client) UserProfile(ctx context.Context) (mood.UserProfile, error) {
	if err := c.wait(ctx); err != nil {
		return mood.UserProfile{}, err
	}
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return mood.UserProfile{}, fmt.Errorf("getting current user: %w", err)
	}

	return mood.UserProfile{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Followers:   int(user.Followers.Count),
		Country:     user.Country,
		Product:     user.Product,
	}, nil
}
