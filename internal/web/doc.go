// Package web implements the podshelf web application: server-rendered pages for browsing the
// catalogue and managing a personal playlist, plus a small read-only JSON API.
//
// # Architecture
//
// A [Server] owns a [server.BasicRouter], the parsed page templates and a cookie session store.
// Every handler calls the free functions in the services package with the repository the
// server was built with; nothing is held globally.
//
// Routes
//
//	GET  /                                     → Random podcasts
//	GET  /podcasts?page=                       → Alphabetical catalogue
//	GET  /search?q=&filter=&page=              → Search by title, author, category or language
//	GET  /description/{podcast_id}?page=       → Podcast, paginated episodes, reviews and rating
//	POST /add_to_playlist/{episode_id}         → Add one episode (login)
//	POST /remove_from_playlist/{episode_id}    → Remove one episode (login)
//	POST /add_podcast_to_playlist/{id}         → Add every episode of a podcast (login)
//	POST /remove_podcast_from_playlist/{id}    → Remove every episode of a podcast (login)
//	GET  /add_review/{podcast_id}              → Review form (login)
//	POST /add_review/{podcast_id}              → Post a review (login)
//	GET  /playlist?page=                       → The user's playlist (login)
//	POST /remove_episode/{episode_id}          → Remove from the playlist page (login)
//	GET  /playlist/export?format=              → Download as csv, markdown or text (login)
//	POST /subscribe/{podcast_id}               → Follow a podcast (login)
//	POST /unsubscribe/{podcast_id}             → Unfollow a podcast (login)
//	GET  /subscriptions                        → Followed podcasts (login)
//	GET  /authentication/register, POST        → Registration
//	GET  /authentication/login, POST           → Login, rate limited per client
//	GET  /authentication/logout                → Logout
//	GET  /api/podcasts?page=                   → JSON catalogue page
//	GET  /api/podcasts/{podcast_id}            → JSON podcast with episodes and rating
//	GET  /api/search?q=&filter=                → JSON search results
//
// Routes marked login redirect to /authentication/login when the session has no user.
//
// Templates
//
// Pages are html/template files embedded from templates/. Each page defines "content" and is
// parsed together with layout.html, which provides "layout", "pager" and "cards".
//
// # Sessions
//
// gorilla/sessions cookies carry the user name, the user id and one-shot flash messages.
//
// # Errors
//
// Missing podcasts and episodes render a 404 page. Validation failures re-render the form with
// a message. Anything else is logged with the request id and answered with a 500.
package web
