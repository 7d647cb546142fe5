package i18n

// bundles holds the per-language translation trees. Leaf values are strings,
// string slices, or []Tip.
var bundles = map[string]map[string]any{
	"en": {
		"common": map[string]any{
			"labels": map[string]any{
				"client":       "Client",
				"project":      "Project",
				"status":       "Status",
				"projectNotes": "Project Notes",
				"leadNotes":    "Lead Notes",
				"type":         "Type",
				"notes":        "Notes",
			},
			"actions": map[string]any{
				"view":               "View",
				"viewOverdueItems":   "View overdue items",
				"viewPastSessions":   "View past sessions",
				"viewProjectDetails": "View Project Details",
				"viewLeadDetails":    "View Lead Details",
			},
			"cta": map[string]any{
				"dashboard": "Dashboard",
				"leads":     "Leads",
				"projects":  "Projects",
				"sessions":  "Sessions",
			},
			"badges": map[string]any{
				"today": "Today",
			},
			"prepositions": map[string]any{
				"at": "at",
			},
			"footer": map[string]any{
				"notice": "This is an automated notification from {{businessName}}.",
				"reason": "You're receiving this because you have notifications enabled in your account settings.",
			},
			"alt": map[string]any{
				"logo": "{{businessName}} logo",
			},
			"motivational": map[string]any{
				"emptyDay": []string{
					"Every quiet day is a chance to build the future. Use this time wisely! 🌟",
					"No sessions today? Perfect opportunity to nurture your business growth! 💪",
					"Great photographers use downtime to create opportunities. Today's your day! ✨",
					"Success isn't just about busy days - it's about making every day count! 🎯",
					"Today's focus time: grow your business, connect with leads, plan your success! 🚀",
				},
			},
		},
		"dailySummary": map[string]any{
			"subject": map[string]any{
				"defaultWithData": "Your Daily Summary",
				"defaultEmpty":    "Daily Summary - Nothing scheduled today",
				"brandedWithData": "📅 Daily Summary - {{date}}",
				"brandedEmpty":    "🌅 Fresh Start Today - {{date}}",
			},
			"modern": map[string]any{
				"pageTitle":      "📊 Daily Summary - {{date}}",
				"headerTitle":    "Daily Summary",
				"headerSubtitle": "Here's your daily summary for <strong>{{date}}</strong>",
				"stats": map[string]any{
					"sessions":  "Today's Sessions",
					"reminders": "Reminders",
					"overdue":   "Overdue",
					"past":      "Past",
				},
				"sections": map[string]any{
					"sessionsTitle":      "Today's Sessions ({{count}})",
					"remindersTitle":     "Today's Reminders ({{count}})",
					"defaultSessionName": "Photography Session",
				},
				"messages": map[string]any{
					"overdueOne":   "You have <strong>1</strong> overdue item that needs attention.",
					"overdueOther": "You have <strong>{{count}}</strong> overdue items that need attention.",
					"pastOne":      "You have <strong>1</strong> past session that needs action.",
					"pastOther":    "You have <strong>{{count}}</strong> past sessions that need action.",
				},
				"links": map[string]any{
					"overdue":      "View overdue items",
					"pastSessions": "View past sessions",
				},
				"quickActionsTitle": "Quick Actions",
			},
			"empty": map[string]any{
				"pageTitle":      "🌅 Fresh Start Today - {{date}}",
				"headerTitle":    "Fresh Start Today!",
				"headerSubtitle": "Today's a perfect opportunity to grow your photography business - <strong>{{date}}</strong>",
				"stats": map[string]any{
					"sessions":  "Today's Sessions",
					"reminders": "Today's Reminders",
					"overdue":   "Overdue Items",
					"past":      "Past Sessions",
				},
				"tipsTitle": "💡 Make Today Count - Business Growth Tips",
				"tips": []Tip{
					{
						Title:       "📞 Follow Up with Leads",
						Description: "Review your lead pipeline and reach out to prospects who haven't responded. A friendly follow-up can convert interest into bookings.",
					},
					{
						Title:       "📋 Organize Your Projects",
						Description: "Update project statuses, organize upcoming sessions, and ensure all client deliverables are on track.",
					},
					{
						Title:       "💰 Review Packages & Pricing",
						Description: "Perfect time to evaluate your service packages, adjust pricing for the season, and create new offerings that attract clients.",
					},
					{
						Title:       "📸 Plan Your Marketing",
						Description: "Create content for social media, reach out to past clients for referrals, or plan your next promotional campaign.",
					},
				},
				"messages": map[string]any{
					"overdueOne":   "Don't forget: You have <strong>1</strong> overdue item that needs attention.",
					"overdueOther": "Don't forget: You have <strong>{{count}}</strong> overdue items that need attention.",
					"pastOne":      "Follow up needed: You have <strong>1</strong> past session that needs action.",
					"pastOther":    "Follow up needed: You have <strong>{{count}}</strong> past sessions that need action.",
				},
			},
		},
		"immediate": map[string]any{
			"header": map[string]any{
				"projectMilestone": map[string]any{
					"title":             "Project Milestone Reached",
					"subtitleCompleted": "{{name}} completed a project you're assigned to",
					"subtitleCancelled": "{{name}} cancelled a project you're assigned to",
				},
			},
			"sections": map[string]any{
				"projectDetails": "Project Details",
				"projectUpdate":  "Project Update",
				"statusUpdate":   "Status Update",
			},
			"cards": map[string]any{
				"projectNotes": "Project Notes",
				"status":       "Status",
				"client":       "Client",
				"project":      "Project",
			},
			"callToAction": map[string]any{
				"project": "View Project Details",
			},
			"footer": map[string]any{
				"projectMilestoneCompleted": "🎊 Congratulations on reaching this milestone! Great work by the team.",
				"projectMilestoneCancelled": "📋 This project status has been updated. Check the project details for more information.",
			},
			"subject": map[string]any{
				"projectMilestoneCompleted": "🎉 Project Completed: {{name}}",
				"projectMilestoneCancelled": "⚠️ Project Cancelled: {{name}}",
			},
		},
	},
	"tr": {
		"common": map[string]any{
			"labels": map[string]any{
				"client":       "Müşteri",
				"project":      "Proje",
				"status":       "Durum",
				"projectNotes": "Proje Notları",
				"leadNotes":    "Aday Notları",
				"type":         "Tür",
				"notes":        "Notlar",
			},
			"actions": map[string]any{
				"view":               "Görüntüle",
				"viewOverdueItems":   "Geciken öğeleri görüntüle",
				"viewPastSessions":   "Geçmiş seansları görüntüle",
				"viewProjectDetails": "Proje detaylarını gör",
				"viewLeadDetails":    "Aday detaylarını gör",
			},
			"cta": map[string]any{
				"dashboard": "Panel",
				"leads":     "Adaylar",
				"projects":  "Projeler",
				"sessions":  "Seanslar",
			},
			"badges": map[string]any{
				"today": "Bugün",
			},
			"prepositions": map[string]any{
				"at": "saat",
			},
			"footer": map[string]any{
				"notice": "Bu, {{businessName}} tarafından gönderilen otomatik bir bildiridir.",
				"reason": "Hesap ayarlarınızda bildirimleri etkinleştirdiğiniz için bu e-postayı alıyorsunuz.",
			},
			"alt": map[string]any{
				"logo": "{{businessName}} logosu",
			},
			"motivational": map[string]any{
				"emptyDay": []string{
					"Sessiz geçen her gün geleceği inşa etmek için bir fırsattır. Bu zamanı iyi kullanın! 🌟",
					"Bugün seans yok mu? İşinizi büyütmek için harika bir fırsat! 💪",
					"Harika fotoğrafçılar boş zamanı fırsata çevirir. Bugün sizin gününüz! ✨",
					"Başarı yalnızca yoğun günlerle değil, her günü değerli kılmakla gelir! 🎯",
					"Bugün odak gününüz: işinizi büyütün, adaylarla iletişime geçin, başarınızı planlayın! 🚀",
				},
			},
		},
		"dailySummary": map[string]any{
			"subject": map[string]any{
				"defaultWithData": "Günlük Özetiniz",
				"defaultEmpty":    "Günlük Özet - Bugün planlanan bir şey yok",
				"brandedWithData": "📅 Günlük Özet - {{date}}",
				"brandedEmpty":    "🌅 Bugün Taze Bir Başlangıç - {{date}}",
			},
			"modern": map[string]any{
				"pageTitle":      "📊 Günlük Özet - {{date}}",
				"headerTitle":    "Günlük Özet",
				"headerSubtitle": "Bugünün özetini sizin için hazırladık: <strong>{{date}}</strong>",
				"stats": map[string]any{
					"sessions":  "Bugünkü Seanslar",
					"reminders": "Hatırlatmalar",
					"overdue":   "Gecikenler",
					"past":      "Geçmiş",
				},
				"sections": map[string]any{
					"sessionsTitle":      "Bugünkü Seanslar ({{count}})",
					"remindersTitle":     "Bugünkü Hatırlatmalar ({{count}})",
					"defaultSessionName": "Fotoğraf Çekimi",
				},
				"messages": map[string]any{
					"overdueOne":   "Dikkat edilmesi gereken <strong>1</strong> gecikmiş öğeniz var.",
					"overdueOther": "Dikkat edilmesi gereken <strong>{{count}}</strong> gecikmiş öğeniz var.",
					"pastOne":      "Aksiyon almanız gereken <strong>1</strong> geçmiş seansınız var.",
					"pastOther":    "Aksiyon almanız gereken <strong>{{count}}</strong> geçmiş seansınız var.",
				},
				"links": map[string]any{
					"overdue":      "Geciken öğeleri görüntüle",
					"pastSessions": "Geçmiş seansları görüntüle",
				},
				"quickActionsTitle": "Hızlı İşlemler",
			},
			"empty": map[string]any{
				"pageTitle":      "🌅 Bugün Taze Bir Başlangıç - {{date}}",
				"headerTitle":    "Güne Taze Bir Başlangıç!",
				"headerSubtitle": "Fotoğraf işinizi büyütmek için harika bir gün - <strong>{{date}}</strong>",
				"stats": map[string]any{
					"sessions":  "Bugünkü Seanslar",
					"reminders": "Bugünkü Hatırlatmalar",
					"overdue":   "Geciken Öğeler",
					"past":      "Geçmiş Seanslar",
				},
				"tipsTitle": "💡 Bugünü Verimli Kullanın - İşinizi Büyütecek İpuçları",
				"tips": []Tip{
					{
						Title:       "📞 Adaylarla Yeniden İletişime Geçin",
						Description: "Aday listenizi gözden geçirin ve henüz dönüş yapmayan kişilerle iletişime geçin. Samimi bir takip dönüşü rezervasyona çevirebilir.",
					},
					{
						Title:       "📋 Projelerinizi Düzenleyin",
						Description: "Proje durumlarını güncelleyin, yaklaşan seansları organize edin ve tüm teslimlerin yolunda olduğundan emin olun.",
					},
					{
						Title:       "💰 Paket ve Fiyatlarınızı Gözden Geçirin",
						Description: "Hizmet paketlerinizi değerlendirmek, sezonluk fiyat düzenlemeleri yapmak ve yeni teklifler oluşturmak için harika bir zaman.",
					},
					{
						Title:       "📸 Pazarlama Planınızı Hazırlayın",
						Description: "Sosyal medya için içerik oluşturun, eski müşterilerden referans isteyin veya bir sonraki kampanyanızı planlayın.",
					},
				},
				"messages": map[string]any{
					"overdueOne":   "Unutmayın: Dikkat edilmesi gereken <strong>1</strong> gecikmiş öğeniz var.",
					"overdueOther": "Unutmayın: Dikkat edilmesi gereken <strong>{{count}}</strong> gecikmiş öğeniz var.",
					"pastOne":      "Takip gerekli: Aksiyon almanız gereken <strong>1</strong> geçmiş seansınız var.",
					"pastOther":    "Takip gerekli: Aksiyon almanız gereken <strong>{{count}}</strong> geçmiş seansınız var.",
				},
			},
		},
		"immediate": map[string]any{
			"header": map[string]any{
				"projectMilestone": map[string]any{
					"title":             "Proje Kilometre Taşı Tamamlandı",
					"subtitleCompleted": "{{name}} sorumlu olduğunuz bir projeyi tamamladı",
					"subtitleCancelled": "{{name}} sorumlu olduğunuz bir projeyi iptal etti",
				},
			},
			"sections": map[string]any{
				"projectDetails": "Proje Detayları",
				"projectUpdate":  "Proje Güncellemesi",
				"statusUpdate":   "Durum Güncellemesi",
			},
			"cards": map[string]any{
				"projectNotes": "Proje Notları",
				"status":       "Durum",
				"client":       "Müşteri",
				"project":      "Proje",
			},
			"callToAction": map[string]any{
				"project": "Proje detaylarını gör",
			},
			"footer": map[string]any{
				"projectMilestoneCompleted": "🎊 Bu kilometre taşına ulaştığınız için tebrikler! Harika bir iş çıkardınız.",
				"projectMilestoneCancelled": "📋 Bu projenin durumu güncellendi. Detaylar için projeyi kontrol edin.",
			},
			"subject": map[string]any{
				"projectMilestoneCompleted": "🎉 Proje Tamamlandı: {{name}}",
				"projectMilestoneCancelled": "⚠️ Proje İptal Edildi: {{name}}",
			},
		},
	},
}
