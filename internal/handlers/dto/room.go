package dto

type CreateGroupRequest struct {
	Name           string   `json:"name" binding:"required,min=1,max=100"`
	ParticipantIDs []string `json:"participant_ids" binding:"required,min=1,dive,uuid"`
}
