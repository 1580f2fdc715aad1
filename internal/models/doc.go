// Package models defines domain entities for the podshelf podcast catalogue.
//
// The package contains two groups of types:
//
// 1. Catalogue entities, built by ingestion and read by every surface
//   - [Author] : Podcast creator, holding back-references to podcast ids
//   - [Category] : Genre label attached to podcasts
//   - [Podcast] : Aggregate root holding categories, episodes and reviews
//   - [Episode] : A single show, referring to its podcast by id
//
// 2. User entities, created in response to requests
//   - [User] : Account with a bcrypt password hash and subscriptions
//   - [Review] : Rating (0-10) and comment written by a user about a podcast
//   - [Playlist] : Ordered, duplicate-free episode queue owned by a user
//   - [PodcastSubscription] : Join entity between a user and a podcast, by id
//
// Every entity is built through a constructor that validates its input and returns an error wrapping [ErrInvalid].
// Identity, equality and ordering are by id unless the type documents otherwise.
//
// Entities refer to each other by id wherever a live reference would form a cycle;
// the repository layer resolves those ids.
package models
