package query

// Query keys. Related reads share a prefix so a mutation can invalidate
// a whole family at once.
const (
	KeyRecentPosts   = "posts.recent"
	KeyInfinitePosts = "posts.infinite"
	KeyCurrentUser   = "users.current"
	KeyTopUsers      = "users.top"
	KeyInfiniteUsers = "users.infinite"

	PrefixPosts    = "posts."
	PrefixUsers    = "users."
	PrefixComments = "comments."
	PrefixFollows  = "follows."
)

// KeyPostByID identifies the read of a single post.
func KeyPostByID(postID string) string { return "posts.byId:" + postID }

// KeyUserPosts identifies the read of one user's posts.
func KeyUserPosts(userID string) string { return "posts.byUser:" + userID }

// KeySearchPosts identifies a caption search.
func KeySearchPosts(term string) string { return "posts.search:" + term }

// KeySavedPosts identifies the read of a user's bookmarked posts.
func KeySavedPosts(userID string) string { return "posts.saved:" + userID }

// KeyUserByID identifies the read of a single user.
func KeyUserByID(userID string) string { return "users.byId:" + userID }

// KeySearchUsers identifies a name search.
func KeySearchUsers(term string) string { return "users.search:" + term }

// KeyComments identifies the comment list of a post.
func KeyComments(postID string) string { return "comments.byPost:" + postID }

// KeyIsFollowing identifies a follow-edge existence read.
func KeyIsFollowing(followerID, followingID string) string {
	return "follows.is:" + followerID + ":" + followingID
}

// KeyFollowCounts identifies the follower/following counts of a user.
func KeyFollowCounts(userID string) string { return "follows.counts:" + userID }
