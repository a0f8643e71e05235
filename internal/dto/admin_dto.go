package dto

type CreatePointTypeRequest struct {
	Slug          string `json:"slug" binding:"required,min=2,max=50"`
	Name          string `json:"name" binding:"required,max=100"`
	Icon          string `json:"icon"`
	DecimalPlaces int    `json:"decimal_places" binding:"min=0,max=8"`
}

type UpdatePointTypeRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Icon   string `json:"icon"`
	Active *bool  `json:"active" binding:"required"`
}

type CreateRankRequest struct {
	Slug           string `json:"slug" binding:"required,min=2,max=50"`
	Name           string `json:"name" binding:"required,max=100"`
	Icon           string `json:"icon"`
	BadgeColor     string `json:"badge_color"`
	PointsRequired int64  `json:"points_required" binding:"min=0"`
	OrderPosition  int    `json:"order_position" binding:"min=0"`
}

type CreateEarningRuleRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	TriggerAction  string `json:"trigger_action" binding:"required,max=50"`
	PointTypeSlug  string `json:"point_type_slug" binding:"required"`
	PointsAwarded  int64  `json:"points_awarded" binding:"required,gt=0"`
	MaxDailyAwards *int   `json:"max_daily_awards"`
	MaxTotalAwards *int   `json:"max_total_awards"`
	Priority       int    `json:"priority"`
}

type CreateAchievementRequest struct {
	Slug          string `json:"slug" binding:"required,min=2,max=50"`
	Name          string `json:"name" binding:"required,max=100"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`
	ConditionType string `json:"condition_type" binding:"required"`
	Threshold     int64  `json:"threshold" binding:"required,gt=0"`
	PointsReward  int64  `json:"points_reward" binding:"min=0"`
	RewardType    string `json:"reward_type"`
	IsSecret      bool   `json:"is_secret"`
}
