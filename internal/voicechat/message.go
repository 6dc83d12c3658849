package voicechat

import "fmt"

// StampMessage builds the text-channel announcement for a freshly awarded
// stamp. When roleID is set the configured role is mentioned as well.
func StampMessage(clubName, memberID, roleID string) string {
	msg := fmt.Sprintf("🎉 <@%s> さんが「%s」の本日のスタンプを獲得しました！", memberID, clubName)
	if roleID != "" {
		msg = fmt.Sprintf("<@&%s> %s", roleID, msg)
	}
	return msg
}
