package redisrepo

import "fmt"

const (
	POST_KEY          = "post:%s"            // <postID>
	LIKE_TOGGLE_KEY   = "toggle:like:%s:%s"   // <userID>:<postID>
	FOLLOW_TOGGLE_KEY = "toggle:follow:%s:%s" // <userID>:<followedUserID>
)

func PostKey(postID string) string {
	return fmt.Sprintf(POST_KEY, postID)
}

func LikeToggleKey(userID string, postID string) string {
	return fmt.Sprintf(LIKE_TOGGLE_KEY, userID, postID)
}

func FollowToggleKey(userID string, followedUserID string) string {
	return fmt.Sprintf(FOLLOW_TOGGLE_KEY, userID, followedUserID)
}
