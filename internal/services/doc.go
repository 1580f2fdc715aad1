// Package services implements the application use cases on top of a [repositories.Repository].
//
// Every function takes the repository explicitly; there is no package-level instance.
//
// # Views
//
// Read paths return presentation-shaped values ([PodcastView], [EpisodeView], [ReviewView], [UserView])
// that the web handlers, JSON API and CLI render directly.
//
// # Workflows
//
// Write paths work on one aggregate at a time:
//   - Getting or creating a user's playlist, and adding or removing one episode or a whole podcast
//   - Posting a review after checking that the podcast and the user exist
//   - Registering and authenticating users with bcrypt password hashes
//   - Subscribing to podcasts
//
// # Errors
//
// Repository absence is translated into named errors:
//   - [ErrNonExistentPodcast] : podcast id not in the catalogue
//   - [ErrNonExistentEpisode] : episode id not in the catalogue
//   - [ErrUnknownUser] : username not registered
//   - [ErrNameNotUnique] : registration with a taken username
//   - [ErrAuthentication] : wrong username or password
package services
