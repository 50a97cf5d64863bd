package graph

import "time"

type EmailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// ItemBody message body; ContentType is "HTML" or "Text".
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Message subset of the Graph message resource used by kimoncrm.
type Message struct {
	ID               string      `json:"id,omitempty"`
	Subject          string      `json:"subject"`
	Body             *ItemBody   `json:"body,omitempty"`
	BodyPreview      string      `json:"bodyPreview,omitempty"`
	From             *Recipient  `json:"from,omitempty"`
	ToRecipients     []Recipient `json:"toRecipients"`
	CcRecipients     []Recipient `json:"ccRecipients,omitempty"`
	ReceivedDateTime *time.Time  `json:"receivedDateTime,omitempty"`
	SentDateTime     *time.Time  `json:"sentDateTime,omitempty"`
	IsRead           bool        `json:"isRead"`
	HasAttachments   bool        `json:"hasAttachments"`
	WebLink          string      `json:"webLink,omitempty"`
}

// MessagePage one page of a mail folder listing.
type MessagePage struct {
	Messages []Message `json:"value"`
	NextLink string    `json:"@odata.nextLink,omitempty"`
}

// User directory user.
type User struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
	JobTitle          string `json:"jobTitle,omitempty"`
}

type userPage struct {
	Users []User `json:"value"`
}

type sendMailBody struct {
	Message         Message `json:"message"`
	SaveToSentItems bool    `json:"saveToSentItems"`
}

// Recipients turns plain addresses into Graph recipients.
func Recipients(addrs []string) []Recipient {
	out := make([]Recipient, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, Recipient{EmailAddress: EmailAddress{Address: a}})
	}
	return out
}
