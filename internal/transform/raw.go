package transform

// Raw payload structs mirror the wire shape of the metadata API. Counter
// fields arrive as decimal strings; keeping them as strings preserves
// the distinction between a zero and a hidden/missing statistic.

// Thumbnail is one rendition of an entity thumbnail.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ThumbnailSet holds the renditions the API may return.
type ThumbnailSet struct {
	Default  *Thumbnail `json:"default"`
	Medium   *Thumbnail `json:"medium"`
	High     *Thumbnail `json:"high"`
	Standard *Thumbnail `json:"standard"`
	Maxres   *Thumbnail `json:"maxres"`
}

// ChannelSnippet carries channel identity fields.
type ChannelSnippet struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CustomURL   string        `json:"customUrl"`
	Country     string        `json:"country"`
	PublishedAt string        `json:"publishedAt"`
	Thumbnails  *ThumbnailSet `json:"thumbnails"`
}

// ChannelStatistics carries the channel counters as strings.
type ChannelStatistics struct {
	ViewCount             string `json:"viewCount"`
	SubscriberCount       string `json:"subscriberCount"`
	VideoCount            string `json:"videoCount"`
	HiddenSubscriberCount *bool  `json:"hiddenSubscriberCount"`
}

// ChannelBranding carries the branding settings subset we keep.
type ChannelBranding struct {
	Channel *struct {
		Keywords string `json:"keywords"`
	} `json:"channel"`
}

// ChannelContentDetails locates the uploads playlist.
type ChannelContentDetails struct {
	RelatedPlaylists *struct {
		Uploads string `json:"uploads"`
	} `json:"relatedPlaylists"`
}

// TopicDetails lists topic category URLs.
type TopicDetails struct {
	TopicCategories []string `json:"topicCategories"`
}

// ChannelStatus carries channel-level flags.
type ChannelStatus struct {
	MadeForKids *bool `json:"madeForKids"`
}

// ChannelItem is one channel resource.
type ChannelItem struct {
	ID               string                 `json:"id"`
	Snippet          *ChannelSnippet        `json:"snippet"`
	Statistics       *ChannelStatistics     `json:"statistics"`
	BrandingSettings *ChannelBranding       `json:"brandingSettings"`
	ContentDetails   *ChannelContentDetails `json:"contentDetails"`
	TopicDetails     *TopicDetails          `json:"topicDetails"`
	Status           *ChannelStatus         `json:"status"`
}

// VideoSnippet carries video identity fields.
type VideoSnippet struct {
	ChannelID            string        `json:"channelId"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	PublishedAt          string        `json:"publishedAt"`
	CategoryID           string        `json:"categoryId"`
	LiveBroadcastContent string        `json:"liveBroadcastContent"`
	Tags                 []string      `json:"tags"`
	Thumbnails           *ThumbnailSet `json:"thumbnails"`
}

// VideoContentDetails carries duration and format flags.
type VideoContentDetails struct {
	Duration        string `json:"duration"`
	Definition      string `json:"definition"`
	Caption         string `json:"caption"`
	LicensedContent *bool  `json:"licensedContent"`
}

// VideoStatus carries video-level flags.
type VideoStatus struct {
	MadeForKids *bool `json:"madeForKids"`
}

// VideoStatistics carries the video counters as strings.
type VideoStatistics struct {
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
}

// PaidPlacementDetails flags sponsored content.
type PaidPlacementDetails struct {
	HasPaidProductPlacement *bool `json:"hasPaidProductPlacement"`
}

// VideoItem is one video resource.
type VideoItem struct {
	ID                          string                `json:"id"`
	Snippet                     *VideoSnippet         `json:"snippet"`
	ContentDetails              *VideoContentDetails  `json:"contentDetails"`
	Status                      *VideoStatus          `json:"status"`
	Statistics                  *VideoStatistics      `json:"statistics"`
	TopicDetails                *TopicDetails         `json:"topicDetails"`
	PaidProductPlacementDetails *PaidPlacementDetails `json:"paidProductPlacementDetails"`
}

// AuthorChannelID wraps the comment author's channel id.
type AuthorChannelID struct {
	Value string `json:"value"`
}

// CommentSnippet carries one comment's fields.
type CommentSnippet struct {
	AuthorDisplayName string           `json:"authorDisplayName"`
	AuthorChannelID   *AuthorChannelID `json:"authorChannelId"`
	TextDisplay       string           `json:"textDisplay"`
	LikeCount         int64            `json:"likeCount"`
	PublishedAt       string           `json:"publishedAt"`
	UpdatedAt         string           `json:"updatedAt"`
}

// Comment is one comment resource.
type Comment struct {
	ID      string          `json:"id"`
	Snippet *CommentSnippet `json:"snippet"`
}

// CommentThreadSnippet carries the top-level comment and reply count.
type CommentThreadSnippet struct {
	TopLevelComment *Comment `json:"topLevelComment"`
	TotalReplyCount int64    `json:"totalReplyCount"`
}

// CommentThreadReplies carries the inline replies of a thread.
type CommentThreadReplies struct {
	Comments []*Comment `json:"comments"`
}

// CommentThread is one comment thread resource.
type CommentThread struct {
	ID      string                `json:"id"`
	Snippet *CommentThreadSnippet `json:"snippet"`
	Replies *CommentThreadReplies `json:"replies"`
}
