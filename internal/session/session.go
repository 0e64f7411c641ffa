package session

import (
	"time"

	"github.com/jabenlo/pstep-bank-store/internal/model"
)

const (
	UserTypeTeacher = "teacher"
	UserTypeStudent = "student"
)

// Session is the server-side state behind one cookie token. Exactly one of
// the teacher or student principal fields is populated. The student snapshot
// is taken at login and not refreshed afterwards; views that need current
// data reload the student from the database.
type Session struct {
	Token     string         `json:"token"`
	UserType  string         `json:"user_type"`
	TeacherID int64          `json:"teacher_id,omitempty"`
	StudentID int64          `json:"student_id,omitempty"`
	Student   *model.Student `json:"student,omitempty"`
	Cart      model.Cart     `json:"cart"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewTeacherSession(teacherID int64) *Session {
	return &Session{
		UserType:  UserTypeTeacher,
		TeacherID: teacherID,
		Cart:      model.Cart{},
		CreatedAt: time.Now().UTC(),
	}
}

func NewStudentSession(student *model.Student) *Session {
	return &Session{
		UserType:  UserTypeStudent,
		StudentID: student.ID,
		Student:   student,
		Cart:      model.Cart{},
		CreatedAt: time.Now().UTC(),
	}
}

func (s *Session) IsTeacher() bool { return s.UserType == UserTypeTeacher }
func (s *Session) IsStudent() bool { return s.UserType == UserTypeStudent }
