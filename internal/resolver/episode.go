package resolver

import "github.com/Belphemur/EpisodeRelay/internal/models"

// SelectEpisode returns the episode numbered requested, or the first episode
// when requested is nil or absent from the list. episodes must not be empty.
func SelectEpisode(episodes []models.Episode, requested *int) models.Episode {
	if requested != nil {
		for _, ep := range episodes {
			if ep.Number == *requested {
				return ep
			}
		}
	}
	return episodes[0]
}
